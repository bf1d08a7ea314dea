package utils

import (
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/toyz/modelcore/internal/errors"
)

var importOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: false,
}

// FormatGoCode gofmts source and removes unused imports. filename is only
// used in error messages and to pick the package directory.
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, importOptions)
	if err != nil {
		return nil, errors.WrapGenerateError("format", filename, err)
	}
	return formatted, nil
}

// WriteGoFile writes already formatted source, creating parent directories
func WriteGoFile(filename string, source []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return errors.WrapFileSystemError("create directory for", filename, err)
	}
	if err := os.WriteFile(filename, source, 0o644); err != nil {
		return errors.WrapFileSystemError("write", filename, err)
	}
	return nil
}
