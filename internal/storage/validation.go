package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/nestegg/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidReport = errors.New("invalid rental report")
	ErrInvalidPlan   = errors.New("invalid retirement plan")
	ErrInvalidUser   = errors.New("invalid user")
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

func validateReport(report *model.RentalReport) error {
	if report == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if strings.TrimSpace(report.Property) == "" {
		return fmt.Errorf("%w: missing property", ErrInvalidReport)
	}
	if report.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", ErrInvalidReport)
	}
	if report.RawCSV == "" {
		return fmt.Errorf("%w: missing CSV contents", ErrInvalidReport)
	}
	return nil
}

func validatePlan(plan *model.RetirementPlan) error {
	if plan == nil {
		return fmt.Errorf("%w: plan", ErrNilParameter)
	}
	if err := plan.Validate(true); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return nil
}

func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidUser)
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("%w: missing password hash", ErrInvalidUser)
	}
	return nil
}
