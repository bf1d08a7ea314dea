package utils

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/toyz/modelcore/internal/errors"
)

// Module is a Go module located on disk
type Module struct {
	Root string // directory holding go.mod
	Path string // module path declared in go.mod
}

// ImportPath resolves a "./" or "../" import relative to the module root.
// Paths escaping the module are rejected.
func (m Module) ImportPath(rel string) (string, error) {
	cleaned := path.Clean(filepath.ToSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", errors.InvalidArgument("import %q escapes module %s", rel, m.Path)
	}
	if cleaned == "." {
		return m.Path, nil
	}
	return m.Path + "/" + cleaned, nil
}

// GoModParser reads go.mod files through a cached FileReader
type GoModParser struct {
	fileReader *FileReader
}

// NewGoModParser creates a go.mod parser sharing fileReader's cache
func NewGoModParser(fileReader *FileReader) *GoModParser {
	return &GoModParser{
		fileReader: fileReader,
	}
}

// ParseModuleName returns the module path declared in goModPath
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", errors.InvalidArgument("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.fileReader.ReadFile(cleanPath)
	if err != nil {
		return "", err
	}

	modFile, err := modfile.ParseLax(cleanPath, []byte(content), nil)
	if err != nil {
		return "", errors.WrapParseError(cleanPath, err)
	}
	if modFile.Module == nil {
		return "", errors.NewSyntaxError("no module declaration found in " + cleanPath)
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile walks up from startDir to the nearest go.mod
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if p.fileReader.Exists(goModPath) {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", errors.New(errors.FileSystemErrorCode, "go.mod file not found above "+startDir).
		WithSuggestion("run the compiler inside a Go module or drop relative imports")
}

// LocateModule finds the module containing startDir
func (p *GoModParser) LocateModule(startDir string) (Module, error) {
	goModPath, err := p.FindGoModFile(startDir)
	if err != nil {
		return Module{}, err
	}
	name, err := p.ParseModuleName(goModPath)
	if err != nil {
		return Module{}, err
	}
	return Module{Root: filepath.Dir(goModPath), Path: name}, nil
}
