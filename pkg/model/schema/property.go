// Package schema describes the properties of managed model types.
//
// A Property is an immutable descriptor of one readable property: its name,
// value type, the supertypes that declare it, its getter and setter
// annotations and a getter handle. Descriptors are built once, by a
// PropertyBuilder or a Merger, and are safe for concurrent use without locks.
//
// Property identity is deliberately narrow. Equal, Hash and Key consider only
// the name, the value type and writability. The managed flag, declaring types
// and annotations are diagnostic metadata: two declarations of the same
// property reached through different supertypes describe one schema entry,
// and a descriptor keeps its identity while declaring types are merged in.
package schema

import (
	"hash/maphash"
	"slices"
	"strings"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/annotation"
	"github.com/toyz/modelcore/pkg/model/method"
	"github.com/toyz/modelcore/pkg/model/types"
)

// Error sentinels for errors.Is checks on descriptor operations
var (
	ErrInvalidArgument   = errors.ErrInvalidArgument
	ErrInvocationFailure = errors.ErrInvocationFailure
	ErrStaleReference    = errors.ErrStaleReference
	ErrConflict          = errors.ErrConflict
)

var hashSeed = maphash.MakeSeed()

// PropertyParams holds the inputs of NewProperty
type PropertyParams struct {
	Name              string
	Type              types.ModelType
	Managed           bool
	Writable          bool
	DeclaringTypes    []types.ModelType
	Getter            method.Accessor
	GetterAnnotations annotation.Set
	SetterAnnotations annotation.Set
}

// Property is an immutable property descriptor
type Property struct {
	name       string
	typ        types.ModelType
	managed    bool
	writable   bool
	declaring  []types.ModelType // sorted by display name, no duplicates
	getter     method.Accessor
	getterAnns annotation.Set
	setterAnns annotation.Set
}

// Key is the comparable identity of a Property
type Key struct {
	Name     string
	Type     types.ModelType
	Writable bool
}

// NewProperty validates params and snapshots them into a descriptor.
// Callers may reuse or mutate params.DeclaringTypes afterwards.
func NewProperty(params PropertyParams) (*Property, error) {
	if params.Name == "" {
		return nil, errors.InvalidArgument("property name is required")
	}
	if params.Type.IsZero() {
		return nil, errors.InvalidArgument("property %s has no value type", params.Name)
	}
	if params.Getter == nil {
		return nil, errors.InvalidArgument("property %s has no getter", params.Name)
	}
	if rt := params.Getter.ReturnType(); !rt.IsZero() && !rt.AssignableTo(params.Type) {
		return nil, errors.InvalidArgument("getter of %s returns %s, not %s",
			params.Name, rt.SimpleName(), params.Type.SimpleName())
	}
	declaring, err := unionTypes(params.Name, nil, params.DeclaringTypes)
	if err != nil {
		return nil, err
	}
	if len(declaring) == 0 {
		return nil, errors.InvalidArgument("property %s has no declaring type", params.Name)
	}

	return &Property{
		name:       params.Name,
		typ:        params.Type,
		managed:    params.Managed,
		writable:   params.Writable,
		declaring:  declaring,
		getter:     params.Getter,
		getterAnns: params.GetterAnnotations,
		setterAnns: params.SetterAnnotations,
	}, nil
}

// MustProperty is like NewProperty but panics on error
func MustProperty(params PropertyParams) *Property {
	p, err := NewProperty(params)
	if err != nil {
		panic(err)
	}
	return p
}

// unionTypes merges add into base, rejecting zero types. The result is a new
// slice sorted by display name.
func unionTypes(name string, base, add []types.ModelType) ([]types.ModelType, error) {
	out := slices.Clone(base)
	for _, t := range add {
		if t.IsZero() {
			return nil, errors.InvalidArgument("property %s has a zero declaring type", name)
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b types.ModelType) int {
		return strings.Compare(a.DisplayName(), b.DisplayName())
	})
	return out, nil
}

// Name returns the property name
func (p *Property) Name() string {
	return p.name
}

// Type returns the value type
func (p *Property) Type() types.ModelType {
	return p.typ
}

// IsManaged reports whether the modeling system owns the property's storage
func (p *Property) IsManaged() bool {
	return p.managed
}

// IsWritable reports whether a setter exists
func (p *Property) IsWritable() bool {
	return p.writable
}

// DeclaringTypes returns every supertype declaring the property, sorted by
// display name. The slice is a copy.
func (p *Property) DeclaringTypes() []types.ModelType {
	return slices.Clone(p.declaring)
}

// IsDeclaredBy reports whether t is one of the declaring types
func (p *Property) IsDeclaredBy(t types.ModelType) bool {
	return slices.Contains(p.declaring, t)
}

// Getter returns the getter handle
func (p *Property) Getter() method.Accessor {
	return p.getter
}

// Value reads the property off instance through the getter handle.
//
// A nil instance fails with ErrInvalidArgument, a failing getter with
// ErrInvocationFailure and a reclaimed handle with ErrStaleReference. An
// instance whose type does not carry the getter panics.
func (p *Property) Value(instance any) (any, error) {
	if method.IsNil(instance) {
		return nil, errors.InvalidArgument("cannot read property %s of a nil instance", p.name)
	}
	return p.getter.Invoke(instance)
}

// ValueOf reads the property as T. T must be the property type or an
// interface it implements.
func ValueOf[T any](p *Property, instance any) (T, error) {
	var zero T
	want := types.Of[T]()
	if want != p.typ && !p.typ.AssignableTo(want) {
		return zero, errors.InvalidArgument("property %s is %s, not %s", p.name, p.typ.SimpleName(), want.SimpleName())
	}

	v, err := p.Value(instance)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.InvalidArgument("getter of %s returned %T, not %s", p.name, v, want.SimpleName())
	}
	return typed, nil
}

// HasAnnotation reports whether the getter carries an annotation of kind
func (p *Property) HasAnnotation(kind annotation.Kind) bool {
	return p.getterAnns.Has(kind)
}

// Annotation returns the getter annotation of kind. Absence is reported by
// the boolean, never by an error.
func (p *Property) Annotation(kind annotation.Kind) (annotation.Annotation, bool) {
	return p.getterAnns.Get(kind)
}

// Annotations returns every getter annotation, sorted by kind name
func (p *Property) Annotations() []annotation.Annotation {
	return p.getterAnns.All()
}

// GetterAnnotations returns the getter annotation set
func (p *Property) GetterAnnotations() annotation.Set {
	return p.getterAnns
}

// SetterAnnotations returns the setter annotations. They exist for
// validation passes and never affect Value.
func (p *Property) SetterAnnotations() annotation.Set {
	return p.setterAnns
}

// AnnotationOf returns the getter annotation of type A
func AnnotationOf[A any](p *Property) (A, bool) {
	return annotation.Get[A](p.getterAnns)
}

// WithDeclaringTypes returns a copy of p whose declaring types also include
// ts. p itself is unchanged.
func (p *Property) WithDeclaringTypes(ts ...types.ModelType) (*Property, error) {
	declaring, err := unionTypes(p.name, p.declaring, ts)
	if err != nil {
		return nil, err
	}
	merged := *p
	merged.declaring = declaring
	return &merged, nil
}

// Key returns the property's identity
func (p *Property) Key() Key {
	return Key{Name: p.name, Type: p.typ, Writable: p.writable}
}

// Equal compares name, type and writability only
func (p *Property) Equal(other *Property) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Key() == other.Key()
}

// Hash is consistent with Equal within one process
func (p *Property) Hash() uint64 {
	return maphash.Comparable(hashSeed, p.Key())
}

// String renders "name(Type)", prefixed with "unmanaged " for unmanaged properties
func (p *Property) String() string {
	var b strings.Builder
	if !p.managed {
		b.WriteString("unmanaged ")
	}
	b.WriteString(p.name)
	b.WriteByte('(')
	b.WriteString(p.typ.SimpleName())
	b.WriteByte(')')
	return b.String()
}
