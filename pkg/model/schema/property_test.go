package schema

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/modelcore/pkg/model/annotation"
	"github.com/toyz/modelcore/pkg/model/method"
	"github.com/toyz/modelcore/pkg/model/types"
)

type interfaceA interface {
	Value() string
}

type interfaceB interface {
	Value() string
}

type sized interface {
	Size() int
}

type thing struct {
	value string
	size  int
}

func (t thing) Value() string { return t.value }

func (t *thing) Size() int { return t.size }

type secret struct{ Level int }

var (
	typeA     = types.Of[interfaceA]()
	typeB     = types.Of[interfaceB]()
	typeSized = types.Of[sized]()
)

func sizeGetter() method.Accessor {
	return method.Func("thing.Size", func(t *thing) (int, error) { return t.size, nil })
}

func valueGetter() method.Accessor {
	return method.Func("thing.Value", func(t thing) (string, error) { return t.value, nil })
}

func newSize(t *testing.T, mutate func(*PropertyParams)) *Property {
	t.Helper()
	params := PropertyParams{
		Name:           "size",
		Type:           types.Of[int](),
		Managed:        true,
		Writable:       false,
		DeclaringTypes: []types.ModelType{typeSized},
		Getter:         sizeGetter(),
	}
	if mutate != nil {
		mutate(&params)
	}
	p, err := NewProperty(params)
	require.NoError(t, err)
	return p
}

func TestNewProperty_RoundTrip(t *testing.T) {
	p := newSize(t, nil)

	assert.Equal(t, "size", p.Name())
	assert.Equal(t, types.Of[int](), p.Type())
	assert.True(t, p.IsManaged())
	assert.False(t, p.IsWritable())
	assert.Equal(t, []types.ModelType{typeSized}, p.DeclaringTypes())
	assert.True(t, p.GetterAnnotations().IsEmpty())
	assert.True(t, p.SetterAnnotations().IsEmpty())
	assert.NotNil(t, p.Getter())
}

func TestNewProperty_DefensiveCopy(t *testing.T) {
	declaring := []types.ModelType{typeA}
	p, err := NewProperty(PropertyParams{
		Name:           "value",
		Type:           types.Of[string](),
		DeclaringTypes: declaring,
		Getter:         valueGetter(),
	})
	require.NoError(t, err)

	declaring[0] = typeB
	assert.Equal(t, []types.ModelType{typeA}, p.DeclaringTypes())

	got := p.DeclaringTypes()
	got[0] = typeB
	assert.True(t, p.IsDeclaredBy(typeA))
	assert.False(t, p.IsDeclaredBy(typeB))
}

func TestNewProperty_CollapsesDuplicates(t *testing.T) {
	p := newSize(t, func(params *PropertyParams) {
		params.DeclaringTypes = []types.ModelType{typeB, typeA, typeB, typeA}
	})
	assert.ElementsMatch(t, []types.ModelType{typeA, typeB}, p.DeclaringTypes())
	assert.Len(t, p.DeclaringTypes(), 2)
}

func TestNewProperty_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PropertyParams)
	}{
		{"missing name", func(p *PropertyParams) { p.Name = "" }},
		{"zero type", func(p *PropertyParams) { p.Type = types.ModelType{} }},
		{"nil getter", func(p *PropertyParams) { p.Getter = nil }},
		{"getter returns another type", func(p *PropertyParams) { p.Getter = valueGetter() }},
		{"no declaring types", func(p *PropertyParams) { p.DeclaringTypes = nil }},
		{"zero declaring type", func(p *PropertyParams) {
			p.DeclaringTypes = []types.ModelType{typeA, {}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := PropertyParams{
				Name:           "size",
				Type:           types.Of[int](),
				DeclaringTypes: []types.ModelType{typeSized},
				Getter:         sizeGetter(),
			}
			tt.mutate(&params)

			_, err := NewProperty(params)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, ErrInvalidArgument))
		})
	}

	assert.Panics(t, func() { MustProperty(PropertyParams{}) })
}

func TestNewProperty_GetterReturnType(t *testing.T) {
	_, err := NewProperty(PropertyParams{
		Name:           "size",
		Type:           types.Of[int](),
		DeclaringTypes: []types.ModelType{typeSized},
		Getter:         valueGetter(),
	})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrInvalidArgument))
	assert.Contains(t, err.Error(), "getter of size returns string, not int")

	p, err := NewProperty(PropertyParams{
		Name:           "size",
		Type:           types.Of[any](),
		DeclaringTypes: []types.ModelType{typeSized},
		Getter:         sizeGetter(),
	})
	require.NoError(t, err)
	v, err := p.Value(&thing{size: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestProperty_EqualityIgnoresMetadata(t *testing.T) {
	base := newSize(t, nil)

	variants := map[string]*Property{
		"managed": newSize(t, func(p *PropertyParams) { p.Managed = false }),
		"declaring types": newSize(t, func(p *PropertyParams) {
			p.DeclaringTypes = []types.ModelType{typeA, typeB}
		}),
		"getter annotations": newSize(t, func(p *PropertyParams) {
			p.GetterAnnotations = annotation.MustSetOf(annotation.Hidden{})
		}),
		"setter annotations": newSize(t, func(p *PropertyParams) {
			p.SetterAnnotations = annotation.MustSetOf(annotation.Rename{Name: "bytes"})
		}),
		"getter": newSize(t, func(p *PropertyParams) { p.Getter = sizeGetter() }),
	}

	for name, other := range variants {
		t.Run(name, func(t *testing.T) {
			assert.True(t, base.Equal(other))
			assert.True(t, other.Equal(base))
			assert.Equal(t, base.Hash(), other.Hash())
			assert.Equal(t, base.Key(), other.Key())
		})
	}
}

func TestProperty_EqualityUsesIdentity(t *testing.T) {
	base := newSize(t, nil)

	assert.False(t, base.Equal(newSize(t, func(p *PropertyParams) { p.Name = "length" })))
	assert.False(t, base.Equal(newSize(t, func(p *PropertyParams) { p.Type = types.Of[int64]() })))
	assert.False(t, base.Equal(newSize(t, func(p *PropertyParams) { p.Writable = true })))
	assert.False(t, base.Equal(nil))

	var none *Property
	assert.True(t, none.Equal(nil))
}

func TestProperty_KeyAsMapKey(t *testing.T) {
	seen := map[Key]*Property{}
	first := newSize(t, nil)
	seen[first.Key()] = first

	merged, err := first.WithDeclaringTypes(typeA)
	require.NoError(t, err)
	assert.Same(t, first, seen[merged.Key()], "merging declaring types keeps the cache key")
}

func TestProperty_SetterAnnotationsIndependent(t *testing.T) {
	p1 := newSize(t, func(p *PropertyParams) {
		p.SetterAnnotations = annotation.MustSetOf(annotation.Hidden{})
	})
	p2 := newSize(t, func(p *PropertyParams) {
		p.SetterAnnotations = annotation.MustSetOf(annotation.Description{Text: "bytes"})
	})

	assert.True(t, p1.Equal(p2))
	assert.Equal(t, p1.Hash(), p2.Hash())
	assert.False(t, p1.SetterAnnotations().Equal(p2.SetterAnnotations()))
	assert.True(t, p1.SetterAnnotations().Has(annotation.KindFor[annotation.Hidden]()))
	assert.True(t, p2.SetterAnnotations().Has(annotation.KindFor[annotation.Description]()))
	assert.False(t, p1.HasAnnotation(annotation.KindFor[annotation.Hidden]()), "setter annotations are not getter annotations")
}

func TestProperty_Annotations(t *testing.T) {
	p := newSize(t, func(p *PropertyParams) {
		p.GetterAnnotations = annotation.MustSetOf(annotation.Rename{Name: "bytes"}, annotation.Hidden{})
	})

	assert.True(t, p.HasAnnotation(annotation.KindFor[annotation.Hidden]()))
	assert.Equal(t, []annotation.Annotation{annotation.Hidden{}, annotation.Rename{Name: "bytes"}}, p.Annotations())

	a, ok := p.Annotation(annotation.KindFor[annotation.Rename]())
	require.True(t, ok)
	assert.Equal(t, annotation.Rename{Name: "bytes"}, a)

	rename, ok := AnnotationOf[annotation.Rename](p)
	assert.True(t, ok)
	assert.Equal(t, "bytes", rename.Name)
}

func TestProperty_AbsentAnnotation(t *testing.T) {
	p := newSize(t, nil)
	kind := annotation.KindFor[secret]()

	assert.False(t, p.HasAnnotation(kind))
	assert.NotPanics(t, func() {
		a, ok := p.Annotation(kind)
		assert.Nil(t, a)
		assert.False(t, ok)
	})

	got, ok := AnnotationOf[secret](p)
	assert.False(t, ok)
	assert.Zero(t, got)
	assert.Empty(t, p.Annotations())
}

func TestProperty_Value(t *testing.T) {
	p := newSize(t, nil)

	v, err := p.Value(&thing{size: 42})
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	size, err := ValueOf[int](p, &thing{size: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, size)

	_, err = ValueOf[string](p, &thing{size: 7})
	assert.True(t, stderrors.Is(err, ErrInvalidArgument))

	anyValue, err := ValueOf[any](p, &thing{size: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, anyValue)
}

func TestProperty_ValueNilInstance(t *testing.T) {
	properties := []*Property{
		newSize(t, nil),
		newSize(t, func(p *PropertyParams) { p.Writable = true; p.Managed = false }),
	}

	for _, p := range properties {
		_, err := p.Value(nil)
		assert.True(t, stderrors.Is(err, ErrInvalidArgument))

		var nilThing *thing
		_, err = p.Value(nilThing)
		assert.True(t, stderrors.Is(err, ErrInvalidArgument))
	}
}

func TestProperty_ValueInvocationFailure(t *testing.T) {
	cause := fmt.Errorf("lazy load failed")
	p := newSize(t, func(p *PropertyParams) {
		p.Getter = method.Func("thing.Size", func(*thing) (int, error) { return 0, cause })
	})

	_, err := p.Value(&thing{})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrInvocationFailure))
	assert.ErrorIs(t, err, cause)
	assert.False(t, stderrors.Is(err, ErrInvalidArgument))
}

func TestProperty_ValueStaleReference(t *testing.T) {
	loader := method.NewLoader("plugin")
	class, err := loader.Define(typeSized)
	require.NoError(t, err)

	p := newSize(t, func(p *PropertyParams) { p.Getter = method.MustOf(class, "Size") })

	size, err := ValueOf[int](p, &thing{size: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, size)

	loader.Close()

	v, err := p.Value(&thing{size: 9})
	assert.Nil(t, v)
	assert.True(t, stderrors.Is(err, ErrStaleReference))
}

func TestProperty_String(t *testing.T) {
	assert.Equal(t, "size(int)", newSize(t, nil).String())
	assert.Equal(t, "unmanaged size(int)", newSize(t, func(p *PropertyParams) { p.Managed = false }).String())

	box := newSize(t, func(p *PropertyParams) { p.Type = types.Of[map[string]*thing]() })
	assert.Equal(t, "size(map[string]*thing)", box.String())
}

func TestProperty_WithDeclaringTypes(t *testing.T) {
	original := newSize(t, func(p *PropertyParams) { p.DeclaringTypes = []types.ModelType{typeA} })

	merged, err := original.WithDeclaringTypes(typeB, typeA)
	require.NoError(t, err)

	assert.ElementsMatch(t, []types.ModelType{typeA, typeB}, merged.DeclaringTypes())
	assert.Equal(t, []types.ModelType{typeA}, original.DeclaringTypes(), "receiver is unchanged")
	assert.True(t, merged.Equal(original))
	assert.Equal(t, merged.Hash(), original.Hash())

	_, err = original.WithDeclaringTypes(types.ModelType{})
	assert.True(t, stderrors.Is(err, ErrInvalidArgument))
}
