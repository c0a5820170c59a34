// Copyright © 2024 The NRefactory authors

// Package diagnostic renders findings as annotated source snippets for
// terminal output. It does not depend on the lint package so that any
// command can use it for host errors as well.
package diagnostic

// Severity indicates the severity level of a rendered diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column, inclusive (0 = auto-detect from source)
	Label  string // text shown after the underline
}

// Diagnostic is a single error, warning or note with optional source
// annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Code     string // rule id shown in brackets after the severity
	Message  string
	Spans    []Span
	Notes    []string // "= note:" lines
	Help     string   // "= help:" line, usually a documentation link
}
