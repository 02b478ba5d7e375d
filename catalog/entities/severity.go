package entities

import (
	"fmt"

	"github.com/giygas/interactions-api/catalog/textnorm"
)

// Severity is the ordinal risk level of a finding.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityModerate
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "Low",
	SeverityModerate: "Moderate",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

// severityAliases maps lowercased, accent-free labels to a level.
// French labels are the ones used in the catalog fixtures.
var severityAliases = map[string]Severity{
	"low":      SeverityLow,
	"faible":   SeverityLow,
	"moderate": SeverityModerate,
	"moderee":  SeverityModerate,
	"high":     SeverityHigh,
	"elevee":   SeverityHigh,
	"critical": SeverityCritical,
	"critique": SeverityCritical,
}

// Rank returns the sort weight of the severity: Critical=4 down to Low=1.
func (s Severity) Rank() int {
	if s < SeverityLow || s > SeverityCritical {
		return 0
	}
	return int(s)
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by both JSON and YAML decoding
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity accepts English names and the French labels, ignoring case and accents
func ParseSeverity(label string) (Severity, error) {
	if s, ok := severityAliases[textnorm.Fold(label)]; ok {
		return s, nil
	}
	return SeverityUnknown, fmt.Errorf("unknown severity %q", label)
}
