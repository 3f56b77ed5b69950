package sadm_test

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"example.com/dolbyectl/internal/dolbye"
	"example.com/dolbyectl/internal/dolbye/bitio"
	"example.com/dolbyectl/internal/dolbye/dolbyegen"
	"example.com/dolbyectl/internal/sadm"
)

func parseOneFrame(t *testing.T) *dolbye.FrameInfo {
	t.Helper()
	frame := dolbyegen.BuildFrame(dolbyegen.DefaultConfig())
	r := bitio.NewReader(bytes.NewReader(frame))
	fi, _, err := dolbye.ParseNextFrame(r, func(dolbye.Diagnostic) {})
	if err != nil {
		t.Fatalf("ParseNextFrame: %v", err)
	}
	return fi
}

func TestProjectBasicShape(t *testing.T) {
	fi := parseOneFrame(t)
	var descs [dolbye.MaxPrograms]string
	descs[0] = "Main Mix"

	doc := sadm.Project(fi, descs, 0, sadm.Options{})

	if len(doc.AudioFormatExtended.Programmes) != 1 {
		t.Fatalf("Programmes = %d, want 1", len(doc.AudioFormatExtended.Programmes))
	}
	if doc.AudioFormatExtended.Programmes[0].Name != "Main Mix" {
		t.Errorf("Programme name = %q, want %q", doc.AudioFormatExtended.Programmes[0].Name, "Main Mix")
	}
	if len(doc.AudioFormatExtended.ChannelFormats) != 4 {
		t.Fatalf("ChannelFormats = %d, want 4", len(doc.AudioFormatExtended.ChannelFormats))
	}
	if doc.FlowID == "" {
		t.Error("FlowID is empty")
	}
	if doc.DBMD == nil {
		t.Fatal("DBMD is nil")
	}
	if doc.DBMD.ProgramConfig != 18 {
		t.Errorf("DBMD.ProgramConfig = %d, want 18", doc.DBMD.ProgramConfig)
	}
}

func TestProjectFallsBackToDefaultProgrammeName(t *testing.T) {
	fi := parseOneFrame(t)
	var descs [dolbye.MaxPrograms]string

	doc := sadm.Project(fi, descs, 0, sadm.Options{})
	if !strings.HasPrefix(doc.AudioFormatExtended.Programmes[0].Name, "Programme ") {
		t.Errorf("Programme name = %q, want fallback prefix", doc.AudioFormatExtended.Programmes[0].Name)
	}
}

func TestProjectOmitsMetersByDefault(t *testing.T) {
	fi := parseOneFrame(t)
	var descs [dolbye.MaxPrograms]string
	doc := sadm.Project(fi, descs, 0, sadm.Options{})
	if doc.DBMD.Meters != nil {
		t.Error("Meters populated despite IncludeMeters=false")
	}
}

func TestProjectIncludesMetersWhenRequested(t *testing.T) {
	fi := parseOneFrame(t)
	var descs [dolbye.MaxPrograms]string
	doc := sadm.Project(fi, descs, 0, sadm.Options{IncludeMeters: true})
	if doc.DBMD.Meters == nil {
		t.Fatal("Meters is nil despite IncludeMeters=true")
	}
	if len(doc.DBMD.Meters.Channels) != 4 {
		t.Errorf("Meters.Channels = %d, want 4", len(doc.DBMD.Meters.Channels))
	}
	// All meter codes in the synthetic fixture are 0, which is the silent code.
	if doc.DBMD.Meters.Channels[0].PeakDB != "-inf" {
		t.Errorf("Channels[0].PeakDB = %q, want -inf", doc.DBMD.Meters.Channels[0].PeakDB)
	}
}

func TestProjectMarshalsToXML(t *testing.T) {
	fi := parseOneFrame(t)
	var descs [dolbye.MaxPrograms]string
	doc := sadm.Project(fi, descs, 0, sadm.Options{})

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	if !bytes.Contains(out, []byte("<frame>")) {
		t.Errorf("output missing <frame> root element:\n%s", out)
	}
	if !bytes.Contains(out, []byte("<flowId>")) {
		t.Errorf("output missing <flowId>:\n%s", out)
	}
}
