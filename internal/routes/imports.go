package routes

import (
	"path"
	"slices"
	"strings"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/internal/utils"
)

const (
	routerImport = "github.com/toyz/modelcore/pkg/router"
	uuidImport   = "github.com/google/uuid"
)

// importSpec is one named import of a generated file
type importSpec struct {
	Alias string
	Path  string
}

// importSet collects the imports of one generated file, keyed by alias
type importSet struct {
	byAlias map[string]string
}

func newImportSet() *importSet {
	return &importSet{byAlias: make(map[string]string)}
}

// add registers alias for importPath. Re-adding the same pair is a no-op.
func (s *importSet) add(alias, importPath string) error {
	if existing, ok := s.byAlias[alias]; ok && existing != importPath {
		return errors.NewValidationErrorWithValue("additional imports", alias,
			"alias "+alias+" is used for both "+existing+" and "+importPath).
			WithSuggestion("give one of them an explicit alias: alias=path")
	}
	s.byAlias[alias] = importPath
	return nil
}

func (s *importSet) path(alias string) (string, bool) {
	p, ok := s.byAlias[alias]
	return p, ok
}

// specs returns the imports sorted by path
func (s *importSet) specs() []importSpec {
	out := make([]importSpec, 0, len(s.byAlias))
	for alias, p := range s.byAlias {
		out = append(out, importSpec{Alias: alias, Path: p})
	}
	slices.SortFunc(out, func(a, b importSpec) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// withRuntime returns a copy of s that also holds the runtime imports every
// generated file may use
func (s *importSet) withRuntime() *importSet {
	out := newImportSet()
	for alias, p := range s.byAlias {
		out.byAlias[alias] = p
	}
	out.byAlias["router"] = routerImport
	out.byAlias["uuid"] = uuidImport
	return out
}

// parseAdditionalImport splits "alias=path" or "path". Paths starting with
// "./" or "../" are resolved against the module by resolve.
func parseAdditionalImport(raw string, resolve func(rel string) (string, error)) (importSpec, error) {
	alias, importPath, explicit := strings.Cut(strings.TrimSpace(raw), "=")
	if !explicit {
		importPath, alias = alias, ""
	}
	alias = strings.TrimSpace(alias)
	importPath = strings.TrimSpace(importPath)

	if err := utils.NotEmpty("import path")(importPath); err != nil {
		return importSpec{}, errors.NewValidationErrorWithValue("additional imports", raw, "import path is empty")
	}

	if isRelativeImport(importPath) {
		resolved, err := resolve(importPath)
		if err != nil {
			return importSpec{}, err
		}
		importPath = resolved
	}

	if alias == "" {
		alias = path.Base(importPath)
	}
	if err := utils.ValidatePackageAlias("alias")(alias); err != nil {
		return importSpec{}, errors.NewValidationErrorWithValue("additional imports", raw, err.Error()).
			WithSuggestion("give the import an explicit alias: alias=" + importPath)
	}
	return importSpec{Alias: alias, Path: importPath}, nil
}

func isRelativeImport(p string) bool {
	return p == "." || p == ".." || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}
