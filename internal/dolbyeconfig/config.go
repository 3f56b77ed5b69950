// Package dolbyeconfig loads the YAML tolerance profiles that govern how
// strict a Dolby E ingest run is about non-fatal findings: which
// Diagnostic codes are dropped from a run's findings, and what
// worker/report defaults a batch run uses. The teacher's
// go.mod imports gopkg.in/yaml.v3 but never calls into it; this package is
// where that dependency actually gets exercised.
package dolbyeconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ToleranceProfile names a set of diagnostic codes that are tolerated
// (dropped from the run's findings, not logged) plus the batch defaults
// to apply when the profile is selected.
type ToleranceProfile struct {
	Name            string   `yaml:"name"`
	AllowedCodes    []string `yaml:"allowedCodes"`
	MaxWorkers      int      `yaml:"maxWorkers"`
	MeterReportOnly bool     `yaml:"meterReportOnly"`
}

// Document is the top-level shape of a tolerance-profile YAML file: a
// default profile name plus the set of named profiles it can select.
type Document struct {
	Default  string                      `yaml:"default"`
	Profiles map[string]ToleranceProfile `yaml:"profiles"`
}

// Load reads and parses a tolerance-profile document from path.
func Load(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("dolbyeconfig: parse %s: %w", path, err)
	}
	if doc.Default != "" {
		if _, ok := doc.Profiles[doc.Default]; !ok {
			return doc, fmt.Errorf("dolbyeconfig: default profile %q not defined in %s", doc.Default, path)
		}
	}
	return doc, nil
}

// Select returns the named profile, or the document's default profile if
// name is empty, or the zero-value profile if neither is defined.
func (d Document) Select(name string) ToleranceProfile {
	if name == "" {
		name = d.Default
	}
	return d.Profiles[name]
}

// Allows reports whether code is tolerated by this profile.
func (p ToleranceProfile) Allows(code string) bool {
	for _, c := range p.AllowedCodes {
		if c == code {
			return true
		}
	}
	return false
}
