// Package types provides ModelType, the reified type token used by model
// schemas. A ModelType identifies a Go type exactly, including instantiated
// generic types such as Box[int], and is comparable so it can key maps.
package types

import (
	"reflect"
	"strconv"
	"strings"
)

// ModelType is a reified type token. The zero value represents no type.
type ModelType struct {
	rt reflect.Type
}

// Of returns the token for T. Interface types are supported.
func Of[T any]() ModelType {
	return ModelType{rt: reflect.TypeFor[T]()}
}

// FromReflect wraps a reflect.Type. A nil type yields the zero token.
func FromReflect(rt reflect.Type) ModelType {
	return ModelType{rt: rt}
}

// TypeOf returns the token for the dynamic type of v.
func TypeOf(v any) ModelType {
	return ModelType{rt: reflect.TypeOf(v)}
}

// Reflect returns the underlying reflect.Type, nil for the zero token.
func (t ModelType) Reflect() reflect.Type {
	return t.rt
}

// IsZero reports whether t is the zero token.
func (t ModelType) IsZero() bool {
	return t.rt == nil
}

// Kind returns the reflect.Kind of the type, reflect.Invalid for the zero token.
func (t ModelType) Kind() reflect.Kind {
	if t.rt == nil {
		return reflect.Invalid
	}
	return t.rt.Kind()
}

// IsInterface reports whether t is an interface type.
func (t ModelType) IsInterface() bool {
	return t.Kind() == reflect.Interface
}

// IsParameterized reports whether t is an instantiated generic type.
func (t ModelType) IsParameterized() bool {
	if t.rt == nil {
		return false
	}
	return strings.Contains(t.rt.Name(), "[")
}

// Elem returns the element type for pointer, slice, array, map and channel types.
func (t ModelType) Elem() ModelType {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return ModelType{rt: t.rt.Elem()}
	default:
		return ModelType{}
	}
}

// PkgPath returns the import path of a named type, "" otherwise.
func (t ModelType) PkgPath() string {
	if t.rt == nil {
		return ""
	}
	return t.rt.PkgPath()
}

// AssignableTo reports whether a value of type t is assignable to u.
func (t ModelType) AssignableTo(u ModelType) bool {
	if t.rt == nil || u.rt == nil {
		return false
	}
	return t.rt.AssignableTo(u.rt)
}

// Implements reports whether t (or *t) implements the interface u.
func (t ModelType) Implements(u ModelType) bool {
	if t.rt == nil || !u.IsInterface() {
		return false
	}
	if t.rt.Implements(u.rt) {
		return true
	}
	return t.rt.Kind() != reflect.Pointer && reflect.PointerTo(t.rt).Implements(u.rt)
}

// DisplayName renders the type with full package paths, e.g.
// "github.com/acme/app.Box[int]" for named types.
func (t ModelType) DisplayName() string {
	if t.rt == nil {
		return "<nil>"
	}
	if t.rt.Name() != "" && t.rt.PkgPath() != "" {
		return t.rt.PkgPath() + "." + t.rt.Name()
	}
	return t.rt.String()
}

// SimpleName renders the type without package qualifiers, keeping type
// arguments: "[]*Box[string]" instead of "[]*app.Box[string]".
func (t ModelType) SimpleName() string {
	if t.rt == nil {
		return "<nil>"
	}
	return simplify(t.rt)
}

// String implements fmt.Stringer using the package-qualified Go syntax.
func (t ModelType) String() string {
	if t.rt == nil {
		return "<nil>"
	}
	return t.rt.String()
}

func simplify(rt reflect.Type) string {
	if name := rt.Name(); name != "" {
		return stripQualifiers(name)
	}
	switch rt.Kind() {
	case reflect.Pointer:
		return "*" + simplify(rt.Elem())
	case reflect.Slice:
		return "[]" + simplify(rt.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(rt.Len()) + "]" + simplify(rt.Elem())
	case reflect.Map:
		return "map[" + simplify(rt.Key()) + "]" + simplify(rt.Elem())
	case reflect.Chan:
		switch rt.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + simplify(rt.Elem())
		case reflect.SendDir:
			return "chan<- " + simplify(rt.Elem())
		default:
			return "chan " + simplify(rt.Elem())
		}
	default:
		return stripQualifiers(rt.String())
	}
}

// stripQualifiers removes package paths from a rendered type name, so that
// "Box[github.com/acme/app.Item]" becomes "Box[Item]".
func stripQualifiers(s string) string {
	var b strings.Builder
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && !isDelimiter(s[i]) {
			continue
		}
		segment := s[start:i]
		if dot := strings.LastIndexByte(segment, '.'); dot >= 0 {
			segment = segment[dot+1:]
		}
		b.WriteString(segment)
		if i < len(s) {
			b.WriteByte(s[i])
		}
		start = i + 1
	}
	return b.String()
}

func isDelimiter(c byte) bool {
	switch c {
	case '[', ']', ',', ' ', '*', '(', ')', '{', '}', ';':
		return true
	}
	return false
}
