package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	assert.Equal(t, "validation error for field 'method': cannot be empty",
		ValidationError{Field: "method", Message: "cannot be empty"}.Error())
	assert.Equal(t, "validation error: invalid format",
		ValidationError{Message: "invalid format"}.Error())
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		check   Validator[string]
		value   string
		wantErr bool
	}{
		{"not empty ok", NotEmpty("f"), "x", false},
		{"not empty fails", NotEmpty("f"), "", true},
		{"identifier ok", IsValidGoIdentifier("name"), "userID", false},
		{"identifier dash", IsValidGoIdentifier("name"), "user-id", true},
		{"identifier digit", IsValidGoIdentifier("name"), "1user", true},
		{"identifier empty", IsValidGoIdentifier("name"), "", true},
		{"keyword", NotKeyword("name"), "func", true},
		{"not keyword", NotKeyword("name"), "fun", false},
		{"reserved", NotReserved("alias", "router"), "router", true},
		{"method ok", ValidateHTTPMethod("method"), "PATCH", false},
		{"method lower", ValidateHTTPMethod("method"), "get", true},
		{"method unknown", ValidateHTTPMethod("method"), "FETCH", true},
		{"alias ok", ValidatePackageAlias("alias"), "controllers", false},
		{"alias keyword", ValidatePackageAlias("alias"), "type", true},
		{"alias reserved", ValidatePackageAlias("alias"), "http", true},
		{"alias blank", ValidatePackageAlias("alias"), "_", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatorChain_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := func(string) error {
		calls++
		return nil
	}
	chain := NewValidatorChain(NotEmpty("f")).Add(counting)

	assert.Error(t, chain.Validate(""))
	assert.Zero(t, calls)

	assert.NoError(t, chain.Validate("x"))
	assert.Equal(t, 1, calls)
}

func TestIsOneOf(t *testing.T) {
	check := IsOneOf("procs", 1, 2, 4)
	assert.NoError(t, check(2))
	assert.EqualError(t, check(3), "validation error for field 'procs': must be one of: [1 2 4]")
}

func TestValidateEach(t *testing.T) {
	check := ValidateEach("imports", NotEmpty("import"))
	assert.NoError(t, check([]string{"a", "b"}))

	err := check([]string{"a", ""})
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "imports[1]", verr.Field)
}
