package dolbyereport_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/dolbyectl/internal/dolbye"
	"example.com/dolbyectl/internal/dolbyereport"
)

func TestBuildTalliesSeverities(t *testing.T) {
	findings := []dolbye.Diagnostic{
		{Code: "A", Severity: dolbye.SeverityWarn},
		{Code: "B", Severity: dolbye.SeverityWarn},
		{Code: "C", Severity: dolbye.SeverityInfo},
	}
	rep := dolbyereport.Build([]dolbyereport.FrameSummary{{FrameIndex: 0}}, findings)

	if rep.Summary.TotalFrames != 1 {
		t.Errorf("TotalFrames = %d, want 1", rep.Summary.TotalFrames)
	}
	if rep.Summary.Warnings != 2 {
		t.Errorf("Warnings = %d, want 2", rep.Summary.Warnings)
	}
	if rep.Summary.Errors != 1 {
		t.Errorf("Errors = %d, want 1", rep.Summary.Errors)
	}
	if rep.Summary.Pass {
		t.Error("Pass = true, want false with a non-warning finding present")
	}
}

func TestBuildPassesWithOnlyWarnings(t *testing.T) {
	findings := []dolbye.Diagnostic{
		{Code: "A", Severity: dolbye.SeverityWarn},
	}
	rep := dolbyereport.Build(nil, findings)
	if !rep.Summary.Pass {
		t.Error("Pass = false, want true when only warnings are present")
	}
}

func TestSaveJSONRoundTrips(t *testing.T) {
	rep := dolbyereport.Build([]dolbyereport.FrameSummary{{FrameIndex: 0, NPrograms: 1}}, nil)
	out := filepath.Join(t.TempDir(), "report.json")
	if err := dolbyereport.SaveJSON(rep, out); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got dolbyereport.AcceptanceReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Summary.TotalFrames != 1 {
		t.Errorf("round-tripped TotalFrames = %d, want 1", got.Summary.TotalFrames)
	}
}

func TestWriteNDJSONOneLinePerFinding(t *testing.T) {
	findings := []dolbye.Diagnostic{
		{Code: "A", Severity: dolbye.SeverityWarn},
		{Code: "B", Severity: dolbye.SeverityInfo},
	}
	var buf bytes.Buffer
	if err := dolbyereport.WriteNDJSON(&buf, findings); err != nil {
		t.Fatalf("WriteNDJSON: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	var d dolbye.Diagnostic
	if err := json.Unmarshal([]byte(lines[0]), &d); err != nil {
		t.Fatalf("Unmarshal line 0: %v", err)
	}
	if d.Code != "A" {
		t.Errorf("line 0 code = %q, want A", d.Code)
	}
}
