package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

// txRunner executes fn inside one database transaction.
type txRunner interface {
	WithinTx(ctx context.Context, fn func(q sqlx.ExtContext) error) error
}

// dashboardInvalidator drops cached dashboard payloads after a write.
type dashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateDashboard(context.Context) {}

func invalidatorOrNoop(inv dashboardInvalidator) dashboardInvalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// NewValidator returns a validator carrying the custom rules used by the
// request payloads. Services sharing one validator must receive this one.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := v.RegisterValidation("attendance_status", validAttendanceStatus); err != nil {
		return nil, fmt.Errorf("register attendance_status rule: %w", err)
	}
	return v, nil
}

func validAttendanceStatus(fl validator.FieldLevel) bool {
	return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
}

func validatorOrDefault(v *validator.Validate) *validator.Validate {
	if v != nil {
		return v
	}
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// lookupError maps a repository read failure to NotFound or Internal.
func lookupError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

// passThrough keeps typed errors raised inside a transaction and wraps anything else.
func passThrough(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Internal(err, message)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
