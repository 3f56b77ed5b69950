package dolbyereport_test

import (
	"testing"

	"example.com/dolbyectl/internal/dolbyereport"
)

func TestDocumentHashToQR(t *testing.T) {
	png, err := dolbyereport.DocumentHashToQR("ab:CD 12-34", 64)
	if err != nil {
		t.Fatalf("DocumentHashToQR: %v", err)
	}
	if len(png) == 0 {
		t.Error("DocumentHashToQR returned empty PNG bytes")
	}
}

func TestDocumentHashToQREmptyHash(t *testing.T) {
	if _, err := dolbyereport.DocumentHashToQR("no-hx-zz!!", 64); err == nil {
		t.Error("DocumentHashToQR with no hex digits: want error, got nil")
	}
}

func TestDocumentHashToQRDefaultSize(t *testing.T) {
	png, err := dolbyereport.DocumentHashToQR("deadbeef", 0)
	if err != nil {
		t.Fatalf("DocumentHashToQR: %v", err)
	}
	if len(png) == 0 {
		t.Error("DocumentHashToQR with size=0 returned empty PNG bytes")
	}
}
