package annotation

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/modelcore/internal/errors"
)

func TestParse_Builtins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Annotation
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"marker", "@Hidden", []Annotation{Hidden{}}},
		{"marker with empty parens", "@Unmanaged()", []Annotation{Unmanaged{}}},
		{"string parameter", `@Rename(name="display_name")`, []Annotation{Rename{Name: "display_name"}}},
		{"escaped quote", `@Description(text="say \"hi\"")`, []Annotation{Description{Text: `say "hi"`}}},
		{"several", `@Hidden @Rename(name="x")`, []Annotation{Hidden{}, Rename{Name: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, len(tt.expected), set.Len())
			for _, a := range tt.expected {
				got, ok := set.Get(KindOf(a))
				require.True(t, ok)
				assert.Equal(t, a, got)
			}
		})
	}
}

func TestParse_CustomRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(auditedDefinition()))
	parser := NewParser(registry)

	set, err := parser.Parse(`@Audited(tags=["a", "b", 3])`)
	require.NoError(t, err)
	a, ok := Get[audited](set)
	require.True(t, ok)
	assert.Equal(t, "system", a.By, "default applied")
	assert.Equal(t, []string{"a", "b", "3"}, a.Tags)

	set, err = parser.Parse(`@Audited(by=admin, tags=[])`)
	require.NoError(t, err)
	a, _ = Get[audited](set)
	assert.Equal(t, "admin", a.By, "bare identifiers are strings")
	assert.Empty(t, a.Tags)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
	}{
		{"unknown annotation", "@Nope", errors.ErrValidation},
		{"unknown parameter", `@Rename(title="x")`, errors.ErrValidation},
		{"missing required", "@Rename", errors.ErrValidation},
		{"validator rejects", `@Rename(name="")`, errors.ErrValidation},
		{"wrong type", `@Rename(name=[1])`, errors.ErrValidation},
		{"duplicate parameter", `@Rename(name="a", name="b")`, errors.ErrValidation},
		{"duplicate annotation", "@Hidden @Hidden", errors.ErrInvalidArgument},
		{"missing at", "Hidden", errors.ErrSyntax},
		{"unterminated", `@Rename(name="x"`, errors.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestParseAt_ReportsLocation(t *testing.T) {
	parser := NewParser(DefaultRegistry())
	_, err := parser.ParseAt(`@Hidden @Nope`, errors.SourceLocation{File: "model.go", Line: 12, Column: 5})
	require.Error(t, err)

	var coreErr errors.CoreError
	require.True(t, stderrors.As(err, &coreErr))
	assert.Equal(t, "model.go", coreErr.Location().File)
	assert.Equal(t, 12, coreErr.Location().Line)
	assert.Equal(t, 13, coreErr.Location().Column)
}
