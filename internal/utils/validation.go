package utils

import (
	"fmt"
	"go/token"
	"net/http"
	"slices"
)

// ValidationError is a failed check on a single value
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator checks one value
type Validator[T any] func(T) error

// ValidatorChain runs validators in order and stops at the first failure
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs the chain
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty rejects the empty string
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		return nil
	}
}

// IsValidGoIdentifier requires a Go identifier
func IsValidGoIdentifier(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		if !token.IsIdentifier(value) {
			return ValidationError{Field: field, Value: value, Message: "must be a valid Go identifier"}
		}
		return nil
	}
}

// NotKeyword rejects Go keywords
func NotKeyword(field string) Validator[string] {
	return func(value string) error {
		if token.IsKeyword(value) {
			return ValidationError{Field: field, Value: value, Message: "is a Go keyword"}
		}
		return nil
	}
}

// NotReserved rejects names in reserved
func NotReserved(field string, reserved ...string) Validator[string] {
	return func(value string) error {
		if slices.Contains(reserved, value) {
			return ValidationError{Field: field, Value: value, Message: "is reserved by generated code"}
		}
		return nil
	}
}

// IsOneOf requires one of allowed
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		if slices.Contains(allowed, value) {
			return nil
		}
		return ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be one of: %v", allowed)}
	}
}

// ValidateEach applies itemValidator to every element, reporting the index
func ValidateEach[T any](field string, itemValidator Validator[T]) Validator[[]T] {
	return func(value []T) error {
		for i, item := range value {
			if err := itemValidator(item); err != nil {
				return ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Value:   item,
					Message: err.Error(),
				}
			}
		}
		return nil
	}
}

// ValidateHTTPMethod accepts the methods a routes file may use
func ValidateHTTPMethod(field string) Validator[string] {
	return IsOneOf(field,
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions)
}

// ValidatePackageAlias accepts names usable as import aliases in generated
// code
func ValidatePackageAlias(field string) Validator[string] {
	return NewValidatorChain(
		IsValidGoIdentifier(field),
		NotKeyword(field),
		NotReserved(field, "router", "http", "uuid", "_"),
	).Validate
}
