package common

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLogfWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Logf("frame %d parsed", 3)

	if !strings.Contains(buf.String(), "frame 3 parsed") {
		t.Errorf("log output = %q, want it to contain %q", buf.String(), "frame 3 parsed")
	}
	if !strings.Contains(buf.String(), "[dolbyectl]") {
		t.Errorf("log output = %q, want prefix [dolbyectl]", buf.String())
	}
}
