package dolbye_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"example.com/dolbyectl/internal/dolbye"
	"example.com/dolbyectl/internal/dolbye/bitio"
	"example.com/dolbyectl/internal/dolbye/dolbyegen"
)

func buildDescriptionStream(bytesText ...string) []byte {
	var out []byte
	cfg := dolbyegen.DefaultConfig()
	for i, b := range bytesText {
		c := cfg
		c.FrameCount = i
		c.Description = b
		out = append(out, dolbyegen.BuildFrame(c)...)
	}
	return out
}

func TestSequencerAccumulatesDescriptionAcrossFrames(t *testing.T) {
	stream := buildDescriptionStream("\x02", "H", "I", "\x03")

	r := bitio.NewReader(bytes.NewReader(stream))
	seq := dolbye.NewSequencer(r, nil)

	for i := 0; i < 4; i++ {
		if _, err := seq.GetNextFrame(); err != nil {
			t.Fatalf("frame %d: GetNextFrame: %v", i, err)
		}
	}

	if got := seq.Description(0); got != "HI" {
		t.Errorf("Description(0) = %q, want %q", got, "HI")
	}
}

func TestSequencerCountFrames(t *testing.T) {
	cfg := dolbyegen.DefaultConfig()
	stream := dolbyegen.BuildStream(cfg, 5)

	r := bitio.NewReader(bytes.NewReader(stream))
	seq := dolbye.NewSequencer(r, nil)

	n, err := seq.CountFrames()
	if err != nil {
		t.Fatalf("CountFrames: %v", err)
	}
	if n != 5 {
		t.Errorf("CountFrames = %d, want 5", n)
	}
}

func TestSequencerCollectDescriptions(t *testing.T) {
	stream := buildDescriptionStream("\x02", "O", "K", "\x03")

	r := bitio.NewReader(bytes.NewReader(stream))
	seq := dolbye.NewSequencer(r, nil)

	descs, err := seq.CollectDescriptions(4)
	if err != nil {
		t.Fatalf("CollectDescriptions: %v", err)
	}
	if descs[0] != "OK" {
		t.Errorf("descs[0] = %q, want %q", descs[0], "OK")
	}
}

func TestSequencerSeekForward(t *testing.T) {
	cfg := dolbyegen.DefaultConfig()
	stream := dolbyegen.BuildStream(cfg, 5)

	r := bitio.NewReader(bytes.NewReader(stream))
	seq := dolbye.NewSequencer(r, nil)

	fi, err := seq.Seek(3)
	if err != nil {
		t.Fatalf("Seek(3): %v", err)
	}
	if fi.FrameCount != 3 {
		t.Errorf("after Seek(3): FrameCount = %d, want 3", fi.FrameCount)
	}
}

func TestSequencerSeekBackward(t *testing.T) {
	cfg := dolbyegen.DefaultConfig()
	stream := dolbyegen.BuildStream(cfg, 5)

	r := bitio.NewReader(bytes.NewReader(stream))
	seq := dolbye.NewSequencer(r, nil)

	if _, err := seq.Seek(4); err != nil {
		t.Fatalf("Seek(4): %v", err)
	}

	fi, err := seq.Seek(1)
	if err != nil {
		t.Fatalf("Seek(1) after Seek(4): %v", err)
	}
	if fi.FrameCount != 1 {
		t.Errorf("after backward Seek(1): FrameCount = %d, want 1", fi.FrameCount)
	}

	fi, err = seq.Seek(2)
	if err != nil {
		t.Fatalf("Seek(2) after backward Seek(1): %v", err)
	}
	if fi.FrameCount != 2 {
		t.Errorf("after Seek(2): FrameCount = %d, want 2", fi.FrameCount)
	}
}

func TestSequencerSeekBeyondEnd(t *testing.T) {
	cfg := dolbyegen.DefaultConfig()
	stream := dolbyegen.BuildStream(cfg, 2)

	r := bitio.NewReader(bytes.NewReader(stream))
	seq := dolbye.NewSequencer(r, nil)

	_, err := seq.Seek(10)
	if !errors.Is(err, dolbye.ErrSeekBeyondEnd) {
		t.Errorf("Seek(10) on 2-frame stream: err = %v, want ErrSeekBeyondEnd", err)
	}
}

func TestSequencerDescriptionOverflowTruncatesWithoutResettingCursor(t *testing.T) {
	bytesText := make([]string, 0, 36)
	for i := 0; i < 35; i++ {
		bytesText = append(bytesText, "A")
	}
	bytesText = append(bytesText, "\x03")
	stream := buildDescriptionStream(bytesText...)

	r := bitio.NewReader(bytes.NewReader(stream))
	var diags []dolbye.Diagnostic
	seq := dolbye.NewSequencer(r, func(d dolbye.Diagnostic) { diags = append(diags, d) })

	for i := 0; i < len(bytesText); i++ {
		if _, err := seq.GetNextFrame(); err != nil {
			t.Fatalf("frame %d: GetNextFrame: %v", i, err)
		}
	}

	got := seq.Description(0)
	if len(got) != 33 {
		t.Fatalf("Description(0) length = %d, want 33 (%q)", len(got), got)
	}
	for _, c := range got {
		if c != 'A' {
			t.Fatalf("Description(0) = %q, want 33 A's", got)
		}
	}

	var overflow int
	for _, d := range diags {
		if d.Code == "DescOverflow" {
			overflow++
		}
	}
	if overflow != 2 {
		t.Errorf("DescOverflow diagnostics = %d, want 2 (attempts 34 and 35)", overflow)
	}
}

func TestSequencerReceivedProgramIgnoresLaterFrames(t *testing.T) {
	stream := buildDescriptionStream("\x02", "H", "I", "\x03", "\x00", "X")

	r := bitio.NewReader(bytes.NewReader(stream))
	var diags []dolbye.Diagnostic
	seq := dolbye.NewSequencer(r, func(d dolbye.Diagnostic) { diags = append(diags, d) })

	for i := 0; i < 6; i++ {
		if _, err := seq.GetNextFrame(); err != nil {
			t.Fatalf("frame %d: GetNextFrame: %v", i, err)
		}
	}

	if got := seq.Description(0); got != "HI" {
		t.Errorf("Description(0) = %q, want %q", got, "HI")
	}
	for _, d := range diags {
		if d.Program == 0 && (d.Code == "DescNullChar" || d.Code == "DescNonPrintable") {
			t.Errorf("diagnostic %+v raised for a program already marked received", d)
		}
	}
}

func TestSequencerNonSequentialFrameCountDiagnostic(t *testing.T) {
	cfg := dolbyegen.DefaultConfig()
	f0 := dolbyegen.BuildFrame(cfg)
	c1 := cfg
	c1.FrameCount = 5
	f1 := dolbyegen.BuildFrame(c1)
	stream := append(f0, f1...)

	r := bitio.NewReader(bytes.NewReader(stream))
	var diags []dolbye.Diagnostic
	seq := dolbye.NewSequencer(r, func(d dolbye.Diagnostic) { diags = append(diags, d) })

	for i := 0; i < 2; i++ {
		if _, err := seq.GetNextFrame(); err != nil {
			t.Fatalf("frame %d: GetNextFrame: %v", i, err)
		}
	}

	var found bool
	for _, d := range diags {
		if d.Code == "NonSequentialFrameCount" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a NonSequentialFrameCount diagnostic, got %+v", diags)
	}
}

func TestSequencerGetNextFrameEOF(t *testing.T) {
	cfg := dolbyegen.DefaultConfig()
	stream := dolbyegen.BuildStream(cfg, 1)

	r := bitio.NewReader(bytes.NewReader(stream))
	seq := dolbye.NewSequencer(r, nil)

	if _, err := seq.GetNextFrame(); err != nil {
		t.Fatalf("first GetNextFrame: %v", err)
	}
	_, err := seq.GetNextFrame()
	if !errors.Is(err, io.EOF) && !errors.Is(err, dolbye.ErrNoPreamble) {
		t.Errorf("second GetNextFrame: err = %v, want EOF or ErrNoPreamble", err)
	}
}
