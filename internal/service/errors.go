package service

import (
	"fmt"
)

var (
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrDuplicateName     = fmt.Errorf("duplicate company name")
	ErrCompanyNotFound   = fmt.Errorf("company not found")
	ErrDuplicateSMTPCode = fmt.Errorf("duplicate smtp code")
	ErrNotFound          = fmt.Errorf("not found")
)
