package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/callmetuna/padhneyAI/internal/domain"
)

var formValidator = validator.New()

var fieldLabels = map[string]string{
	"FullName":        "Full name",
	"Email":           "Email address",
	"Password":        "Password",
	"ConfirmPassword": "Confirm password",
}

// FieldError is a single input-layer problem.
type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Message() string {
	label := fieldLabels[e.Field]
	if label == "" {
		label = e.Field
	}
	switch e.Rule {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email"
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Rule)
	}
}

// FormError lists every field that failed, in form order.
type FormError struct {
	Fields []FieldError
}

func (e *FormError) Error() string {
	return strings.Join(e.Messages(), "; ")
}

func (e *FormError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Message())
	}
	return out
}

// Has reports whether field failed validation.
func (e *FormError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ValidateForm applies the checks the sign-up screen enforces before the
// submit button does anything: every field present, email well formed.
// Whether the passwords match is left to SubmitRegistration.
func ValidateForm(form domain.RegistrationForm) error {
	trimmed := NormalizeForm(form)

	err := formValidator.Struct(trimmed)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.OpError{
			Op:   "usecase.validate_form",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	fe := &FormError{Fields: make([]FieldError, 0, len(verrs))}
	for _, v := range verrs {
		fe.Fields = append(fe.Fields, FieldError{Field: v.StructField(), Rule: v.Tag()})
	}
	return fe
}

// NormalizeForm trims the free-text fields. Passwords are kept verbatim.
func NormalizeForm(form domain.RegistrationForm) domain.RegistrationForm {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	return form
}
