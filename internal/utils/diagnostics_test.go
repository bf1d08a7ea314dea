package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	d.SetColors(false)
	d.SetShowTime(false)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		level       DiagnosticLevel
		wantInfo    bool
		wantVerbose bool
		wantError   bool
		wantDebug   bool
	}{
		{DiagnosticSilent, false, false, false, false},
		{DiagnosticError, false, false, true, false},
		{DiagnosticInfo, true, false, true, false},
		{DiagnosticVerbose, true, true, true, false},
		{DiagnosticDebug, true, true, true, true},
	}
	for _, tt := range tests {
		d, out, errOut := newTestDiagnostics(tt.level)
		d.Info("compiled %d routes", 3)
		d.Success("done")
		d.Verbose("details")
		d.Debug("fork %d", 1)
		d.Error("boom")

		assert.Equal(t, tt.wantInfo, bytes.Contains(out.Bytes(), []byte("[INFO] compiled 3 routes")))
		assert.Equal(t, tt.wantInfo, bytes.Contains(out.Bytes(), []byte("[SUCCESS] done")))
		assert.Equal(t, tt.wantVerbose, bytes.Contains(out.Bytes(), []byte("[VERBOSE] details")))
		assert.Equal(t, tt.wantDebug, bytes.Contains(out.Bytes(), []byte("[DEBUG] fork 1")))
		assert.Equal(t, tt.wantError, errOut.String() == "[ERROR] boom\n")
	}
}

func TestDiagnosticSystem_Formatting(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Header("compiling routes")
	d.Subsection("Sources")
	d.Indent()
	d.List("conf/%s", "routes")
	d.PhaseItem("parsed")
	d.Unindent()
	d.Unindent()
	d.Summary("Done", map[string]any{"routes": 2, "files": 1})

	assert.Equal(t, "modelcore: compiling routes\n"+
		"\nSources:\n"+
		"  - conf/routes\n"+
		"  ✓ parsed\n"+
		"\nDone\n   files: 1\n   routes: 2\n\n", out.String())
}

func TestDiagnosticSystem_Colors(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.SetColors(true)
	d.Warn("careful")
	assert.Contains(t, out.String(), "\x1b[33m[WARN]")
	assert.Contains(t, out.String(), "careful")
}

func TestShouldUseColors(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORCE_COLOR", "1")
	assert.False(t, shouldUseColors())

	t.Setenv("NO_COLOR", "")
	assert.True(t, shouldUseColors())

	t.Setenv("FORCE_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.False(t, shouldUseColors())
}
