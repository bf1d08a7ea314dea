package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/modelcore/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"conf/routes"}, cfg.Routes.Sources)
	assert.Equal(t, "routes", cfg.Routes.Destination)
	assert.False(t, cfg.Routes.ServeMux)
	assert.Empty(t, cfg.Routes.Imports)
	assert.Zero(t, cfg.Routes.Fork.MaxProcs)
}

func TestLoad_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "modelcore.yaml"), `
routes:
  sources: [conf/routes, conf/admin.routes]
  destination: internal/gen/routes
  serve_mux: true
  reverse_routes: true
  namespace_reverse_router: true
  imports:
    - controllers=./internal/controllers
  fork:
    memory_limit: 1073741824
    max_procs: 2
    env: [GOGC=50]
`)

	cfg, err := Load("")
	require.NoError(t, err)

	r := cfg.Routes
	assert.Equal(t, []string{"conf/routes", "conf/admin.routes"}, r.Sources)
	assert.Equal(t, "internal/gen/routes", r.Destination)
	assert.True(t, r.ServeMux)
	assert.True(t, r.ReverseRoutes)
	assert.True(t, r.NamespaceReverseRouter)
	assert.False(t, r.Static)

	spec := r.CompileSpec()
	assert.Equal(t, []string{"controllers=./internal/controllers"}, spec.AdditionalImports())
	assert.Equal(t, int64(1<<30), spec.ForkOptions().MemoryLimit)
	assert.Equal(t, 2, spec.ForkOptions().MaxProcs)
	assert.Equal(t, map[string]string{"GOGC": "50"}, spec.ForkOptions().Env)
	assert.True(t, spec.IsGenerateReverseRoutes())
}

func TestLoad_ExplicitFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "routes:\n  destination: gen\n  static: true\n")
	t.Setenv("MODELCORE_ROUTES_DESTINATION", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Routes.Destination)
	assert.True(t, cfg.Routes.Static)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, stderrors.Is(err, errors.ErrConfiguration), "%v", err)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "routes:\n  fork:\n    max_procs: -1\n    env: [NOEQUALS]\n")
	_, err = Load(bad)
	require.Error(t, err)
	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Equal(t, 2, multi.Count())
}

func TestForkConfig_ForkOptions(t *testing.T) {
	opts := ForkConfig{Env: []string{"A=1", "B=x=y"}}.ForkOptions()
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, opts.Env)
	assert.Nil(t, ForkConfig{}.ForkOptions().Env)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
