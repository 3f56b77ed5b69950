package dolbyeconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"example.com/dolbyectl/internal/dolbyeconfig"
)

const sampleYAML = `
default: strict
profiles:
  strict:
    name: strict
    allowedCodes: []
    maxWorkers: 4
    meterReportOnly: false
  lenient:
    name: lenient
    allowedCodes: ["PreambleModeMismatch", "DescNonPrintable"]
    maxWorkers: 8
    meterReportOnly: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tolerance.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndSelect(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	doc, err := dolbyeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := doc.Select("")
	if def.Name != "strict" {
		t.Errorf("default profile = %q, want strict", def.Name)
	}

	lenient := doc.Select("lenient")
	if lenient.MaxWorkers != 8 {
		t.Errorf("lenient.MaxWorkers = %d, want 8", lenient.MaxWorkers)
	}
	if !lenient.Allows("PreambleModeMismatch") {
		t.Error("lenient profile should allow PreambleModeMismatch")
	}
	if lenient.Allows("SomethingElse") {
		t.Error("lenient profile should not allow an unlisted code")
	}
}

func TestLoadRejectsUnknownDefault(t *testing.T) {
	path := writeConfig(t, "default: missing\nprofiles:\n  strict:\n    name: strict\n")
	if _, err := dolbyeconfig.Load(path); err == nil {
		t.Error("Load with undefined default profile: want error, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := dolbyeconfig.Load("/nonexistent/tolerance.yaml"); err == nil {
		t.Error("Load with missing file: want error, got nil")
	}
}

func TestSelectUnknownProfileReturnsZeroValue(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	doc, err := dolbyeconfig.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p := doc.Select("does-not-exist")
	if p.Name != "" {
		t.Errorf("unknown profile Name = %q, want empty", p.Name)
	}
}
