package schema

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/annotation"
	"github.com/toyz/modelcore/pkg/model/types"
)

// Merger folds declarations found on several supertypes into one property
// per name.
//
// Declarations of the same name must agree on value type and writability.
// Agreeing declarations union their declaring types and annotations; the
// first declaration keeps its getter and managed flag, and the first
// annotation of each kind wins. A later annotation of the same kind with a
// different value is a conflict. Conflicting declarations are recorded and
// the first one is kept.
//
// A Merger is not safe for concurrent use.
type Merger struct {
	order  []string
	merged map[string]*Property
	errs   *errors.MultipleErrors
}

// NewMerger creates an empty merger
func NewMerger() *Merger {
	return &Merger{merged: make(map[string]*Property)}
}

// Add merges p into the accumulated properties. It returns a ConflictError
// when p disagrees with an earlier declaration.
func (m *Merger) Add(p *Property) error {
	if p == nil {
		return errors.InvalidArgument("cannot merge a nil property")
	}

	existing, ok := m.merged[p.name]
	if !ok {
		m.order = append(m.order, p.name)
		m.merged[p.name] = p
		return nil
	}

	merged, err := merge(existing, p)
	if err != nil {
		if ce, ok := err.(errors.CoreError); ok {
			errors.AddToMultiple(&m.errs, ce)
		}
		return err
	}
	m.merged[p.name] = merged
	return nil
}

// AddAll merges every property, collecting all conflicts
func (m *Merger) AddAll(ps ...*Property) error {
	var errs *errors.MultipleErrors
	for _, p := range ps {
		if err := m.Add(p); err != nil {
			if ce, ok := err.(errors.CoreError); ok {
				errors.AddToMultiple(&errs, ce)
			}
		}
	}
	return errs.ErrorOrNil()
}

// Err returns every conflict recorded so far, or nil
func (m *Merger) Err() error {
	return m.errs.ErrorOrNil()
}

// Property returns the merged property called name
func (m *Merger) Property(name string) (*Property, bool) {
	p, ok := m.merged[name]
	return p, ok
}

// Properties returns the merged properties in first-seen order
func (m *Merger) Properties() []*Property {
	out := make([]*Property, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.merged[name])
	}
	return out
}

// Len returns the number of distinct property names seen
func (m *Merger) Len() int {
	return len(m.order)
}

func merge(existing, next *Property) (*Property, error) {
	if existing.typ != next.typ {
		return nil, conflict(existing, next,
			fmt.Sprintf("type %s differs from %s", next.typ.SimpleName(), existing.typ.SimpleName()))
	}
	if existing.writable != next.writable {
		return nil, conflict(existing, next, "writability differs")
	}

	getterAnns, err := mergeAnnotations(existing, next, existing.getterAnns, next.getterAnns, "getter")
	if err != nil {
		return nil, err
	}
	setterAnns, err := mergeAnnotations(existing, next, existing.setterAnns, next.setterAnns, "setter")
	if err != nil {
		return nil, err
	}

	merged, err := existing.WithDeclaringTypes(next.declaring...)
	if err != nil {
		return nil, err
	}
	merged.getterAnns = getterAnns
	merged.setterAnns = setterAnns
	return merged, nil
}

func mergeAnnotations(existing, next *Property, a, b annotation.Set, role string) (annotation.Set, error) {
	if b.IsEmpty() {
		return a, nil
	}

	entries := a.Map()
	for _, kind := range b.Kinds() {
		incoming, _ := b.Get(kind)
		current, ok := entries[kind]
		if !ok {
			entries[kind] = incoming
			continue
		}
		if !reflect.DeepEqual(current, incoming) {
			return annotation.Set{}, conflict(existing, next,
				fmt.Sprintf("%s annotation @%s has different values", role, kind.Name()))
		}
	}
	return annotation.NewSet(entries)
}

func conflict(existing, next *Property, reason string) *errors.ConflictError {
	var declarers []string
	for _, t := range append(slices.Clone(existing.declaring), next.declaring...) {
		name := t.SimpleName()
		if !slices.Contains(declarers, name) {
			declarers = append(declarers, name)
		}
	}
	return errors.NewConflictError(existing.name, reason, declarers...)
}

// typesOf returns the declaring types of every property, deduplicated
func typesOf(ps []*Property) []types.ModelType {
	var out []types.ModelType
	for _, p := range ps {
		for _, t := range p.declaring {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}
