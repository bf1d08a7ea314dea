package schema

import (
	"github.com/toyz/modelcore/pkg/model/annotation"
	"github.com/toyz/modelcore/pkg/model/method"
	"github.com/toyz/modelcore/pkg/model/types"
)

// PropertyBuilder accumulates one property while supertypes are walked.
// It is not safe for concurrent use; Build publishes an immutable snapshot
// and the builder may keep accumulating afterwards.
type PropertyBuilder struct {
	params PropertyParams
}

// NewPropertyBuilder starts a property declared by declaringType
func NewPropertyBuilder(name string, typ types.ModelType, declaringType types.ModelType) *PropertyBuilder {
	return &PropertyBuilder{
		params: PropertyParams{
			Name:           name,
			Type:           typ,
			DeclaringTypes: []types.ModelType{declaringType},
		},
	}
}

// Managed sets the managed flag
func (b *PropertyBuilder) Managed(managed bool) *PropertyBuilder {
	b.params.Managed = managed
	return b
}

// Writable sets the writable flag
func (b *PropertyBuilder) Writable(writable bool) *PropertyBuilder {
	b.params.Writable = writable
	return b
}

// Getter sets the getter handle
func (b *PropertyBuilder) Getter(getter method.Accessor) *PropertyBuilder {
	b.params.Getter = getter
	return b
}

// GetterAnnotations sets the getter annotations
func (b *PropertyBuilder) GetterAnnotations(set annotation.Set) *PropertyBuilder {
	b.params.GetterAnnotations = set
	return b
}

// SetterAnnotations sets the setter annotations
func (b *PropertyBuilder) SetterAnnotations(set annotation.Set) *PropertyBuilder {
	b.params.SetterAnnotations = set
	return b
}

// DeclaredBy adds declaring types. Duplicates collapse at Build.
func (b *PropertyBuilder) DeclaredBy(ts ...types.ModelType) *PropertyBuilder {
	b.params.DeclaringTypes = append(b.params.DeclaringTypes, ts...)
	return b
}

// Build validates and snapshots the accumulated declaration
func (b *PropertyBuilder) Build() (*Property, error) {
	return NewProperty(b.params)
}
