package utils

import (
	"os"
	"path/filepath"

	"github.com/toyz/modelcore/internal/errors"
)

// FileReader reads text files, caching contents until the file changes
type FileReader struct {
	contents *Cache[string, string]
}

// NewFileReader creates a FileReader with an empty cache
func NewFileReader() *FileReader {
	return &FileReader{
		contents: NewCache[string, string](),
	}
}

// ReadFile returns the contents of filePath
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := fr.cleanPath(filePath)
	if err != nil {
		return "", err
	}

	if cached, ok := fr.contents.GetWithFileValidation(cleanPath, cleanPath); ok {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.WrapFileSystemError("read", cleanPath, err)
	}

	text := string(content)
	// a failed stat only means the next read misses the cache
	_ = fr.contents.SetWithFileInfo(cleanPath, text, cleanPath)
	return text, nil
}

// Exists reports whether filePath names a regular file
func (fr *FileReader) Exists(filePath string) bool {
	stat, err := os.Stat(filepath.Clean(filePath))
	return err == nil && stat.Mode().IsRegular()
}

// InvalidateFile drops filePath from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.contents.Delete(filepath.Clean(filePath))
}

// CachedFiles returns the number of cached files
func (fr *FileReader) CachedFiles() int {
	return fr.contents.Size()
}

func (fr *FileReader) cleanPath(filePath string) (string, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", errors.Wrap(errors.FileSystemErrorCode, "invalid file path", err)
	}
	return filepath.Clean(filePath), nil
}
