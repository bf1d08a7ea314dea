package router

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// ParamError reports a parameter that is missing or fails to parse
type ParamError struct {
	Name string
	Raw  string
	Type string
	Err  error
}

func (e *ParamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("missing parameter %s", e.Name)
	}
	return fmt.Sprintf("parameter %s: cannot parse %q as %s: %v", e.Name, e.Raw, e.Type, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// Parse converts raw into T. Supported types are string, bool, the sized
// and unsized integer and float types and uuid.UUID.
func Parse[T any](raw string) (T, error) {
	var v T
	var err error
	switch p := any(&v).(type) {
	case *string:
		*p = raw
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *int:
		*p, err = strconv.Atoi(raw)
	case *int32:
		var n int64
		n, err = strconv.ParseInt(raw, 10, 32)
		*p = int32(n)
	case *int64:
		*p, err = strconv.ParseInt(raw, 10, 64)
	case *uint:
		var n uint64
		n, err = strconv.ParseUint(raw, 10, 0)
		*p = uint(n)
	case *uint64:
		*p, err = strconv.ParseUint(raw, 10, 64)
	case *float32:
		var f float64
		f, err = strconv.ParseFloat(raw, 32)
		*p = float32(f)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	case *uuid.UUID:
		*p, err = uuid.Parse(raw)
	default:
		return v, fmt.Errorf("unsupported parameter type %T", v)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Format renders a parameter value for a URL, the inverse of Parse
func Format(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

// PathParam parses the path parameter name
func PathParam[T any](r *http.Request, name string) (T, error) {
	raw := r.PathValue(name)
	v, err := Parse[T](raw)
	if err != nil {
		return v, &ParamError{Name: name, Raw: raw, Type: fmt.Sprintf("%T", v), Err: err}
	}
	return v, nil
}

// QueryParam parses the required query parameter name
func QueryParam[T any](r *http.Request, name string) (T, error) {
	values := r.URL.Query()
	if !values.Has(name) {
		var zero T
		return zero, &ParamError{Name: name}
	}
	raw := values.Get(name)
	v, err := Parse[T](raw)
	if err != nil {
		return v, &ParamError{Name: name, Raw: raw, Type: fmt.Sprintf("%T", v), Err: err}
	}
	return v, nil
}

// QueryParamOr parses the query parameter name, returning def when absent
func QueryParamOr[T any](r *http.Request, name string, def T) (T, error) {
	if !r.URL.Query().Has(name) {
		return def, nil
	}
	return QueryParam[T](r, name)
}
