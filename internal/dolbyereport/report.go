// Package dolbyereport turns a parsed Dolby E run into the acceptance
// artifacts an operator files alongside the resulting S-ADM document: a
// JSON/NDJSON diagnostic dump, a PDF summary, and a QR code encoding the
// emitted document's hash.
package dolbyereport

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"example.com/dolbyectl/internal/dolbye"
)

// Summary tallies findings across a run the way the teacher's
// rules.AcceptanceReport.Summary does for Chapter-10 gate results.
type Summary struct {
	TotalFrames int  `json:"totalFrames"`
	Findings    int  `json:"findings"`
	Warnings    int  `json:"warnings"`
	Errors      int  `json:"errors"`
	Pass        bool `json:"pass"`
}

// FrameSummary is one row of the per-frame matrix shown in the PDF report,
// standing in for the teacher's per-stage GateResult rows.
type FrameSummary struct {
	FrameIndex   int    `json:"frameIndex"`
	ProgramConfig int   `json:"programConfig"`
	FrameRateCode int   `json:"frameRateCode"`
	NPrograms    int    `json:"nPrograms"`
	NChannels    int    `json:"nChannels"`
	Findings     int    `json:"findings"`
}

// AcceptanceReport is the top-level acceptance artifact for a Dolby E ingest
// run, grounded on the teacher's rules.AcceptanceReport shape but scoped to
// Dolby E frame findings instead of Chapter-10 rule findings.
type AcceptanceReport struct {
	Summary  Summary            `json:"summary"`
	Frames   []FrameSummary     `json:"frames"`
	Findings []dolbye.Diagnostic `json:"findings,omitempty"`
}

// Build tallies frames and diagnostics into an AcceptanceReport.
func Build(frames []FrameSummary, findings []dolbye.Diagnostic) AcceptanceReport {
	rep := AcceptanceReport{Frames: frames, Findings: findings}
	rep.Summary.TotalFrames = len(frames)
	rep.Summary.Findings = len(findings)
	for _, f := range findings {
		if f.Severity == dolbye.SeverityWarn {
			rep.Summary.Warnings++
		} else {
			rep.Summary.Errors++
		}
	}
	rep.Summary.Pass = rep.Summary.Errors == 0
	return rep
}

// SaveJSON writes the report as pretty-printed JSON.
func SaveJSON(rep AcceptanceReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

// WriteNDJSON streams one JSON object per diagnostic, one per line, in the
// style of the teacher's internal/server newline-delimited JSON writer.
func WriteNDJSON(w io.Writer, findings []dolbye.Diagnostic) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, f := range findings {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return bw.Flush()
}
