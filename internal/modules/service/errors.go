package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Service layer errors for better error handling
var (
	ErrValidation = errors.New("validation failed")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")

	// Tasks
	ErrTaskNotFound = errors.New("task not found")

	// Collaboration
	ErrSessionNotFound     = errors.New("collaboration session not found")
	ErrCompilerUnavailable = errors.New("compiler service unavailable")
	ErrCompileFailed       = errors.New("compiler request failed")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// validateInput runs struct tag validation and wraps failures in ErrValidation
// with one "field: rule" entry per violation.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details = append(details, strings.ToLower(fe.Field())+": "+rule)
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(details, ", "))
}
