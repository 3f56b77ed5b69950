package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"example.com/dolbyectl/internal/manifest"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildClassifiesByExtension(t *testing.T) {
	streamPath := writeTempFile(t, "capture.dolbye", "elementary bytes")
	xmlPath := writeTempFile(t, "frame.xml", "<frame/>")
	jsonPath := writeTempFile(t, "report.json", "{}")
	pdfPath := writeTempFile(t, "report.pdf", "%PDF-1.4")
	pngPath := writeTempFile(t, "hash.png", "\x89PNG")
	otherPath := writeTempFile(t, "notes.txt", "hi")

	m, err := manifest.Build([]string{streamPath, xmlPath, jsonPath, pdfPath, pngPath, otherPath})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Items) != 6 {
		t.Fatalf("Items = %d, want 6", len(m.Items))
	}

	want := map[string]string{
		streamPath: "elementary-stream",
		xmlPath:    "sadm",
		jsonPath:   "report-json",
		pdfPath:    "report-pdf",
		pngPath:    "qr-code",
		otherPath:  "other",
	}
	for _, item := range m.Items {
		if item.Type != want[item.Path] {
			t.Errorf("%s: type = %q, want %q", item.Path, item.Type, want[item.Path])
		}
		if item.Sha256 == "" {
			t.Errorf("%s: empty sha256", item.Path)
		}
		if item.Size == 0 {
			t.Errorf("%s: zero size", item.Path)
		}
	}
	if m.ShaAlgo != "sha256" {
		t.Errorf("ShaAlgo = %q, want sha256", m.ShaAlgo)
	}
}

func TestBuildMissingFile(t *testing.T) {
	if _, err := manifest.Build([]string{"/nonexistent/path.xml"}); err == nil {
		t.Error("Build with missing file: want error, got nil")
	}
}

func TestSaveRoundTrips(t *testing.T) {
	streamPath := writeTempFile(t, "capture.dolbye", "elementary bytes")
	m, err := manifest.Build([]string{streamPath})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := filepath.Join(t.TempDir(), "manifest.json")
	if err := manifest.Save(m, out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got manifest.Manifest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Items) != 1 {
		t.Errorf("round-tripped Items = %d, want 1", len(got.Items))
	}
}
