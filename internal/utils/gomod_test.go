package utils

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/modelcore/internal/errors"
)

func TestGoModParser_LocateModule(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.25\n"), 0o644))
	nested := filepath.Join(root, "conf", "routes")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	parser := NewGoModParser(NewFileReader())

	goMod, err := parser.FindGoModFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "go.mod"), goMod)

	module, err := parser.LocateModule(nested)
	require.NoError(t, err)
	assert.Equal(t, root, module.Root)
	assert.Equal(t, "example.com/app", module.Path)
}

func TestGoModParser_ParseModuleNameErrors(t *testing.T) {
	dir := t.TempDir()
	parser := NewGoModParser(NewFileReader())

	_, err := parser.ParseModuleName(filepath.Join(dir, "routes"))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))

	noModule := filepath.Join(dir, "go.mod")
	require.NoError(t, os.WriteFile(noModule, []byte("go 1.25\n"), 0o644))
	_, err = parser.ParseModuleName(noModule)
	assert.True(t, stderrors.Is(err, errors.ErrSyntax))
}

func TestModule_ImportPath(t *testing.T) {
	m := Module{Root: "/src/app", Path: "example.com/app"}

	tests := map[string]string{
		"./controllers":           "example.com/app/controllers",
		"./internal/../handlers":  "example.com/app/handlers",
		".":                       "example.com/app",
		"./a/b/":                  "example.com/app/a/b",
	}
	for rel, want := range tests {
		got, err := m.ImportPath(rel)
		require.NoError(t, err, rel)
		assert.Equal(t, want, got)
	}

	for _, rel := range []string{"../other", "..", "./a/../../b"} {
		_, err := m.ImportPath(rel)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument), rel)
	}
}
