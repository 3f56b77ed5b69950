package dolbyereport

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DocumentHashToQR creates a QR code PNG encoding a hex document hash,
// grounded on the teacher's internal/report.ManifestHashToQR but sized for
// the SHA-256 of an emitted S-ADM document rather than a manifest.
func DocumentHashToQR(hash string, size int) ([]byte, error) {
	normalized := sanitizeHash(hash)
	if normalized == "" {
		return nil, fmt.Errorf("dolbyereport: document hash is empty")
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(normalized, qrcode.Medium, size)
}

func sanitizeHash(hash string) string {
	upper := strings.ToUpper(strings.TrimSpace(hash))
	var b strings.Builder
	for _, r := range upper {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r)
		}
	}
	return b.String()
}
