package forms

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrBlank     = errors.New("value is blank")
	ErrDuplicate = errors.New("value already added")
)

// ValidationError is a rejected form. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// checkStruct runs the validate tags of v and turns the first failure into a
// ValidationError, using labels for readable field names.
func checkStruct(v any, labels map[string]string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), label+" is required.")
	case "email":
		return invalid(fe.Field(), "Please enter a valid email address.")
	case "max":
		return invalid(fe.Field(), fmt.Sprintf("%s must be at most %s characters.", label, fe.Param()))
	}
	return invalid(fe.Field(), label+" is invalid.")
}

// parseAmount reads a price field. Blank counts as zero.
func parseAmount(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(field, "Prices must be numbers.")
	}
	return v, nil
}

func checked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
