// Copyright © 2024 The NRefactory authors

package lint

import (
	"encoding/json"
	"fmt"
)

// Severity indicates the severity level of a diagnostic. Diagnostics are
// advisory; there is no error level.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityInfo
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ParseSeverity parses "info" or "warning".
func ParseSeverity(str string) (Severity, error) {
	switch str {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	default:
		return severityUnset, fmt.Errorf("unknown severity: %q", str)
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalYAML serializes the severity as a YAML string.
func (s Severity) MarshalYAML() (interface{}, error) {
	if s == severityUnset {
		return "warning", nil
	}
	return s.String(), nil
}
