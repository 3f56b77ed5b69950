// Package manifest builds a signable inventory of the files produced by a
// Dolby E ingest run: the raw elementary stream, the emitted S-ADM
// document, and the acceptance report artifacts.
package manifest

import (
	"encoding/json"
	"os"
	"time"

	"example.com/dolbyectl/internal/common"
)

// Item describes one file entry in a Manifest, grounded on the teacher's
// root-level manifest.Item.
type Item struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
	Type   string `json:"type"`
}

// Manifest is a signable inventory of a run's output files.
type Manifest struct {
	CreatedAt time.Time  `json:"createdAt"`
	ShaAlgo   string     `json:"shaAlgo"`
	Items     []Item     `json:"items"`
	Signature *Signature `json:"signature,omitempty"`
}

// Signature records a detached signature applied to the manifest.
type Signature struct {
	Type          string `json:"type"`
	CertSubject   string `json:"certSubject,omitempty"`
	Issuer        string `json:"issuer,omitempty"`
	SignatureFile string `json:"signatureFile,omitempty"`
}

// Build hashes each path and classifies it by extension into the file
// types this pipeline produces.
func Build(paths []string) (Manifest, error) {
	m := Manifest{CreatedAt: time.Now().UTC(), ShaAlgo: "sha256"}
	for _, p := range paths {
		hex, sz, err := common.Sha256OfFile(p)
		if err != nil {
			return m, err
		}
		typ := "other"
		switch {
		case hasExt(p, ".de", ".dolbye", ".dbe"):
			typ = "elementary-stream"
		case hasExt(p, ".xml", ".adm"):
			typ = "sadm"
		case hasExt(p, ".json", ".ndjson"):
			typ = "report-json"
		case hasExt(p, ".pdf"):
			typ = "report-pdf"
		case hasExt(p, ".png"):
			typ = "qr-code"
		}
		m.Items = append(m.Items, Item{Path: p, Size: sz, Sha256: hex, Type: typ})
	}
	return m, nil
}

func hasExt(path string, exts ...string) bool {
	for _, e := range exts {
		if len(path) >= len(e) && path[len(path)-len(e):] == e {
			return true
		}
	}
	return false
}

// Save writes m as pretty-printed JSON.
func Save(m Manifest, out string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}
