// Package annotation models metadata attached to property accessors.
//
// An annotation is any Go value; its Kind is its dynamic type. A Set holds
// at most one annotation per kind and is immutable once built, so it can be
// shared between goroutines without synchronization.
package annotation

import (
	"reflect"
	"slices"
	"strings"

	"github.com/toyz/modelcore/internal/errors"
)

// Annotation is a metadata value. Its dynamic type is its Kind.
type Annotation any

// Kind identifies an annotation type. The zero Kind identifies nothing.
type Kind struct {
	rt reflect.Type
}

// KindOf returns the kind of a, the zero Kind for nil.
func KindOf(a Annotation) Kind {
	return Kind{rt: reflect.TypeOf(a)}
}

// KindFor returns the kind for annotation type A.
func KindFor[A any]() Kind {
	return Kind{rt: reflect.TypeFor[A]()}
}

// IsZero reports whether k is the zero Kind.
func (k Kind) IsZero() bool {
	return k.rt == nil
}

// Name returns the unqualified type name, e.g. "Hidden".
func (k Kind) Name() string {
	if k.rt == nil {
		return ""
	}
	if k.rt.Name() != "" {
		return k.rt.Name()
	}
	return k.rt.String()
}

// String returns the package-qualified name, e.g. "annotation.Hidden".
func (k Kind) String() string {
	if k.rt == nil {
		return "<nil>"
	}
	return k.rt.String()
}

// Set is an immutable collection holding at most one annotation per kind.
// The zero Set is empty and ready to use.
type Set struct {
	entries map[Kind]Annotation
	kinds   []Kind // sorted by String()
}

// NewSet snapshots m. Every value must be non-nil and keyed by its own kind.
// Later changes to m do not affect the returned Set.
func NewSet(m map[Kind]Annotation) (Set, error) {
	if len(m) == 0 {
		return Set{}, nil
	}

	entries := make(map[Kind]Annotation, len(m))
	for kind, a := range m {
		if a == nil {
			return Set{}, errors.InvalidArgument("annotation for kind %s is nil", kind)
		}
		if actual := KindOf(a); actual != kind {
			return Set{}, errors.InvalidArgument("annotation of kind %s stored under kind %s", actual, kind)
		}
		entries[kind] = a
	}
	return newSet(entries), nil
}

// SetOf builds a Set from annotation values. Two values of the same kind fail.
func SetOf(annotations ...Annotation) (Set, error) {
	if len(annotations) == 0 {
		return Set{}, nil
	}

	entries := make(map[Kind]Annotation, len(annotations))
	for _, a := range annotations {
		if a == nil {
			return Set{}, errors.InvalidArgument("annotation is nil")
		}
		kind := KindOf(a)
		if _, exists := entries[kind]; exists {
			return Set{}, errors.InvalidArgument("annotation kind %s given more than once", kind)
		}
		entries[kind] = a
	}
	return newSet(entries), nil
}

// MustSetOf is like SetOf but panics on error. Intended for fixed tables.
func MustSetOf(annotations ...Annotation) Set {
	s, err := SetOf(annotations...)
	if err != nil {
		panic(err)
	}
	return s
}

func newSet(entries map[Kind]Annotation) Set {
	kinds := make([]Kind, 0, len(entries))
	for kind := range entries {
		kinds = append(kinds, kind)
	}
	slices.SortFunc(kinds, func(a, b Kind) int {
		return strings.Compare(a.String(), b.String())
	})
	return Set{entries: entries, kinds: kinds}
}

// Len returns the number of annotations.
func (s Set) Len() int {
	return len(s.kinds)
}

// IsEmpty reports whether the set holds no annotations.
func (s Set) IsEmpty() bool {
	return len(s.kinds) == 0
}

// Has reports whether an annotation of kind k is present.
func (s Set) Has(k Kind) bool {
	_, ok := s.entries[k]
	return ok
}

// Get returns the annotation of kind k. The boolean is false when absent.
func (s Set) Get(k Kind) (Annotation, bool) {
	a, ok := s.entries[k]
	return a, ok
}

// Kinds returns the kinds present, sorted by qualified name.
func (s Set) Kinds() []Kind {
	return slices.Clone(s.kinds)
}

// All returns the annotations sorted by kind name.
func (s Set) All() []Annotation {
	all := make([]Annotation, 0, len(s.kinds))
	for _, kind := range s.kinds {
		all = append(all, s.entries[kind])
	}
	return all
}

// Map returns a copy of the set as a map.
func (s Set) Map() map[Kind]Annotation {
	m := make(map[Kind]Annotation, len(s.entries))
	for kind, a := range s.entries {
		m[kind] = a
	}
	return m
}

// Equal reports whether both sets hold deeply equal annotations for the same kinds.
func (s Set) Equal(other Set) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for kind, a := range s.entries {
		b, ok := other.entries[kind]
		if !ok || !reflect.DeepEqual(a, b) {
			return false
		}
	}
	return true
}

// String renders the set as "@Kind @Kind".
func (s Set) String() string {
	names := make([]string, 0, len(s.kinds))
	for _, kind := range s.kinds {
		names = append(names, "@"+kind.Name())
	}
	return strings.Join(names, " ")
}

// Get returns the annotation of type A from s.
func Get[A any](s Set) (A, bool) {
	a, ok := s.entries[KindFor[A]()]
	if !ok {
		var zero A
		return zero, false
	}
	typed, ok := a.(A)
	return typed, ok
}
