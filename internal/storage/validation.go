package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docmind/expense-audit/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidRecord = errors.New("invalid expense record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateLimit ensures a query limit is positive.
func validateLimit(limit int) error {
	if limit <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

// validateRecord validates a historical expense record.
func validateRecord(r *model.HistoricalRecord) error {
	if r == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if r.Vendor == "" {
		return fmt.Errorf("%w: missing vendor", ErrInvalidRecord)
	}
	if r.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidRecord)
	}
	return nil
}
