// Copyright © 2024 The NRefactory authors

package lint

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ezhangle/NRefactory/message"
)

var (
	// ErrCatalogFrozen is returned by Register after Freeze.
	ErrCatalogFrozen = errors.New("catalog is frozen")
	// ErrDuplicateID is returned when an id is registered twice.
	ErrDuplicateID = errors.New("duplicate diagnostic id")
	// ErrEmptyID is returned for descriptors without an id.
	ErrEmptyID = errors.New("empty diagnostic id")
)

// Catalog maps stable rule ids to descriptors. Registration happens once at
// startup; after Freeze the catalog is read-only and safe for concurrent
// use without locking.
type Catalog struct {
	mu     sync.Mutex
	frozen atomic.Bool
	byID   map[string]*Descriptor
	byName map[string]*Descriptor
	sorted []*Descriptor
}

// NewCatalog returns an empty, unfrozen catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[string]*Descriptor),
		byName: make(map[string]*Descriptor),
	}
}

// Register adds d and returns its id.
func (c *Catalog) Register(d *Descriptor) (string, error) {
	if d == nil || d.ID == "" {
		return "", ErrEmptyID
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen.Load() {
		return "", fmt.Errorf("%s: %w", d.ID, ErrCatalogFrozen)
	}
	if _, ok := c.byID[d.ID]; ok {
		return "", fmt.Errorf("%s: %w", d.ID, ErrDuplicateID)
	}
	if d.Name != "" {
		if other, ok := c.byName[d.Name]; ok {
			return "", fmt.Errorf("%s: name %q already used by %s: %w", d.ID, d.Name, other.ID, ErrDuplicateID)
		}
		c.byName[d.Name] = d
	}
	c.byID[d.ID] = d
	return d.ID, nil
}

// MustRegister is like Register but panics on error. It is meant for
// package initialization.
func (c *Catalog) MustRegister(d *Descriptor) string {
	id, err := c.Register(d)
	if err != nil {
		panic(err)
	}
	return id
}

// Freeze ends registration. It is idempotent.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen.Load() {
		return
	}
	c.sorted = make([]*Descriptor, 0, len(c.byID))
	for _, d := range c.byID {
		c.sorted = append(c.sorted, d)
	}
	sort.Slice(c.sorted, func(i, j int) bool { return c.sorted[i].ID < c.sorted[j].ID })
	c.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (c *Catalog) Frozen() bool {
	return c.frozen.Load()
}

// Supported returns every registered descriptor sorted by id. The slice is
// a copy; the descriptors are shared and must not be modified.
func (c *Catalog) Supported() []*Descriptor {
	if c.frozen.Load() {
		return append([]*Descriptor(nil), c.sorted...)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Descriptor, 0, len(c.byID))
	for _, d := range c.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the descriptor registered under an id or a name.
func (c *Catalog) Lookup(idOrName string) (*Descriptor, bool) {
	// A frozen catalog never changes, so readers skip the lock.
	if c.frozen.Load() {
		return c.lookup(idOrName)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(idOrName)
}

func (c *Catalog) lookup(idOrName string) (*Descriptor, bool) {
	if d, ok := c.byID[idOrName]; ok {
		return d, true
	}
	d, ok := c.byName[idOrName]
	return d, ok
}

// Reserved descriptors for rules whose detection logic is not implemented.
// They stay disabled so configuration that mentions them remains valid.
var (
	DescMemberCanBeMadeStatic = &Descriptor{
		ID:               IDMemberCanBeMadeStatic,
		Name:             "member-can-be-static",
		Title:            "Member can be made static",
		MessageTemplate:  "Member '{0}' can be made static",
		Category:         CategoryPracticesAndImprovement,
		DefaultSeverity:  SeverityInfo,
		EnabledByDefault: false,
		HelpLink:         HelpLinkFor(IDMemberCanBeMadeStatic),
	}
	DescPublicConstructorInAbstractClass = &Descriptor{
		ID:               IDPublicConstructorInAbstractClass,
		Name:             "public-ctor-in-abstract",
		Title:            "Constructor in abstract class should not be public",
		MessageTemplate:  "Constructor in abstract class should not be public",
		Category:         CategoryPracticesAndImprovement,
		DefaultSeverity:  SeverityInfo,
		EnabledByDefault: false,
		HelpLink:         HelpLinkFor(IDPublicConstructorInAbstractClass),
		Fix:              &FixDescriptor{ID: "make-protected", Title: "Make constructor protected"},
	}
	DescSuggestUseVarKeywordEvident = &Descriptor{
		ID:               IDSuggestUseVarKeywordEvident,
		Name:             "suggest-var",
		Title:            "Use 'var' keyword when possible",
		MessageTemplate:  "Use 'var' keyword",
		Category:         CategoryOpportunity,
		DefaultSeverity:  SeverityInfo,
		EnabledByDefault: false,
		HelpLink:         HelpLinkFor(IDSuggestUseVarKeywordEvident),
	}
)

// DefaultCatalog holds the descriptors of the built-in rules and the
// reserved ids. It is frozen.
var DefaultCatalog = buildDefaultCatalog()

func buildDefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, r := range DefaultRules() {
		c.MustRegister(r.Descriptor())
	}
	c.MustRegister(DescMemberCanBeMadeStatic)
	c.MustRegister(DescPublicConstructorInAbstractClass)
	c.MustRegister(DescSuggestUseVarKeywordEvident)
	c.Freeze()
	for _, d := range c.Supported() {
		if err := message.Default.Register(d.MessageTemplate); err != nil {
			panic(fmt.Errorf("%s: %w", d.ID, err))
		}
	}
	return c
}
