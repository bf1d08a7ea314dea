package schema

import (
	"slices"
	"strings"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/types"
)

// Schema is the immutable set of properties of one model type
type Schema struct {
	typ        types.ModelType
	properties map[string]*Property
	names      []string // sorted
}

// New creates a schema for typ. Property names must be unique.
func New(typ types.ModelType, properties ...*Property) (*Schema, error) {
	if typ.IsZero() {
		return nil, errors.InvalidArgument("schema needs a model type")
	}

	s := &Schema{
		typ:        typ,
		properties: make(map[string]*Property, len(properties)),
		names:      make([]string, 0, len(properties)),
	}
	for _, p := range properties {
		if p == nil {
			return nil, errors.InvalidArgument("schema for %s contains a nil property", typ.SimpleName())
		}
		if _, exists := s.properties[p.name]; exists {
			return nil, errors.InvalidArgument("schema for %s declares property %s twice", typ.SimpleName(), p.name).
				WithSuggestion("merge declarations from several supertypes with a Merger")
		}
		s.properties[p.name] = p
		s.names = append(s.names, p.name)
	}
	slices.Sort(s.names)
	return s, nil
}

// FromMerger creates a schema from merged declarations. Any conflict the
// merger recorded is returned instead.
func FromMerger(typ types.ModelType, m *Merger) (*Schema, error) {
	if err := m.Err(); err != nil {
		return nil, err
	}
	return New(typ, m.Properties()...)
}

// Type returns the model type
func (s *Schema) Type() types.ModelType {
	return s.typ
}

// Property returns the property called name
func (s *Schema) Property(name string) (*Property, bool) {
	p, ok := s.properties[name]
	return p, ok
}

// Properties returns every property sorted by name
func (s *Schema) Properties() []*Property {
	out := make([]*Property, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.properties[name])
	}
	return out
}

// Names returns the property names in sorted order
func (s *Schema) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of properties
func (s *Schema) Len() int {
	return len(s.names)
}

// Managed reports whether the schema has properties and all of them are managed
func (s *Schema) Managed() bool {
	if len(s.names) == 0 {
		return false
	}
	for _, p := range s.properties {
		if !p.managed {
			return false
		}
	}
	return true
}

// DeclaringTypes returns every type contributing at least one property
func (s *Schema) DeclaringTypes() []types.ModelType {
	out := typesOf(s.Properties())
	slices.SortFunc(out, func(a, b types.ModelType) int {
		return strings.Compare(a.DisplayName(), b.DisplayName())
	})
	return out
}

func (s *Schema) String() string {
	parts := make([]string, 0, len(s.names))
	for _, p := range s.Properties() {
		parts = append(parts, p.String())
	}
	return s.typ.SimpleName() + "{" + strings.Join(parts, ", ") + "}"
}
