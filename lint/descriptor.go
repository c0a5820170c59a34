// Copyright © 2024 The NRefactory authors

package lint

import (
	"fmt"
	"strings"
)

// Category groups descriptors for configuration UIs.
type Category int

const (
	CategoryRedundancy Category = iota
	CategoryCodeQuality
	CategoryPracticesAndImprovement
	CategoryOpportunity
)

var categoryNames = [...]string{
	CategoryRedundancy:              "redundancy",
	CategoryCodeQuality:             "code-quality",
	CategoryPracticesAndImprovement: "practices-and-improvement",
	CategoryOpportunity:             "opportunity",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// MarshalText encodes the category by name for JSON and YAML.
func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("unknown category: %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if name == string(text) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown category: %q", text)
}

// TagUnnecessary marks diagnostics whose flagged code can be deleted with no
// change in behavior. Editors render them faded rather than underlined.
const TagUnnecessary = "unnecessary"

// FixDescriptor names a corrective transformation a host may offer for a
// diagnostic. The engine never applies fixes itself.
type FixDescriptor struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Common fixes.
var (
	FixRemoveModifier = &FixDescriptor{ID: "remove-modifier", Title: "Remove redundant modifier"}
	FixRemoveBaseCall = &FixDescriptor{ID: "remove-base-call", Title: "Remove 'base()'"}
	FixRemoveComma    = &FixDescriptor{ID: "remove-comma", Title: "Remove ','"}
)

// IsRemoval reports whether applying the fix deletes the diagnostic's span.
func (f *FixDescriptor) IsRemoval() bool {
	return f != nil && strings.HasPrefix(f.ID, "remove-")
}

// Descriptor is the immutable metadata of one rule.
type Descriptor struct {
	// ID is the stable identifier (NRxxxx). IDs are never reused for a
	// different meaning so that stored suppressions stay valid.
	ID string `json:"id" yaml:"id"`

	// Name is a short kebab-case alias for the ID (e.g. "redundant-internal").
	Name string `json:"name" yaml:"name"`

	Title string `json:"title" yaml:"title"`

	// MessageTemplate is the diagnostic message with positional
	// placeholders {0}, {1}, ... filled from Diagnostic.Args.
	MessageTemplate string `json:"message" yaml:"message"`

	Category         Category       `json:"category" yaml:"category"`
	DefaultSeverity  Severity       `json:"severity" yaml:"severity"`
	EnabledByDefault bool           `json:"enabled" yaml:"enabled"`
	HelpLink         string         `json:"helpLink,omitempty" yaml:"helpLink,omitempty"`
	Tags             []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Fix              *FixDescriptor `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// HasTag reports whether the descriptor carries tag.
func (d *Descriptor) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matches reports whether s names this descriptor by ID or by Name.
func (d *Descriptor) Matches(s string) bool {
	return s == d.ID || (d.Name != "" && s == d.Name)
}

// HelpLinkBase is the prefix of every descriptor help link.
const HelpLinkBase = "https://github.com/ezhangle/NRefactory/blob/master/docs/rules/"

// HelpLinkFor returns the documentation URL of a rule id.
func HelpLinkFor(id string) string {
	return HelpLinkBase + id + ".md"
}
