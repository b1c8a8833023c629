package service

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"email-catalog-go/internal/metrics"
	"email-catalog-go/internal/model"
	"email-catalog-go/internal/repository"
)

// setupRepo initializes an in-memory SQLite repository for service tests.
func setupRepo(t *testing.T) *repository.Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(&model.Company{}, &model.Email{})
	require.NoError(t, err, "failed to migrate test database")

	return repository.New(db)
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetricsWith(prometheus.NewRegistry())
}
