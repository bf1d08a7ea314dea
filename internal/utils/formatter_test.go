package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/modelcore/internal/errors"
)

func TestFormatGoCode(t *testing.T) {
	src := []byte(`package gen
import (
	"fmt"
	"strings"
)
func Hello() string { return   strings.ToUpper("hi") }
`)
	out, err := FormatGoCode("gen/hello.go", src)
	require.NoError(t, err)

	assert.NotContains(t, string(out), `"fmt"`, "unused imports are removed")
	assert.Contains(t, string(out), "func Hello() string { return strings.ToUpper(\"hi\") }")
}

func TestFormatGoCode_InvalidSource(t *testing.T) {
	_, err := FormatGoCode("gen/bad.go", []byte("package gen\nfunc {"))
	assert.Equal(t, errors.GenerationErrorCode, errors.CodeOf(err))
}

func TestWriteGoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen", "routes", "routes.go")
	require.NoError(t, WriteGoFile(path, []byte("package routes\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package routes\n", string(content))
}
