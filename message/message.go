// Copyright © 2024 The NRefactory authors

// Package message renders diagnostic message templates.
//
// Templates use positional placeholders ({0}, {1}, ...). They are
// registered in a golang.org/x/text catalog keyed by the template itself,
// so a translation can be added for any language without touching the
// rules that produce the messages.
package message

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Provider renders a message template with its arguments.
type Provider interface {
	Format(template string, args ...string) string
}

var placeholder = regexp.MustCompile(`\{(\d+)\}`)

// ToPrintf converts {N} placeholders into explicit printf argument
// indexes. Literal percent signs are escaped.
func ToPrintf(template string) string {
	var out []byte
	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(template, -1) {
		out = append(out, escapePercent(template[last:m[0]])...)
		n, _ := strconv.Atoi(template[m[2]:m[3]])
		out = append(out, fmt.Sprintf("%%[%d]s", n+1)...)
		last = m[1]
	}
	out = append(out, escapePercent(template[last:])...)
	return string(out)
}

func escapePercent(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			out = append(out, '%')
		}
		out = append(out, s[i])
	}
	return out
}

// Catalog is a Provider backed by an x/text message catalog. Templates that
// were never registered are rendered directly.
type Catalog struct {
	mu      sync.RWMutex
	builder *catalog.Builder
	tag     language.Tag
	known   map[string]bool
	printer *message.Printer
}

// NewCatalog returns a catalog that renders in the given language.
func NewCatalog(tag language.Tag) *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	return &Catalog{
		builder: b,
		tag:     tag,
		known:   make(map[string]bool),
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}
}

// Register adds the English rendering of template. It is a no-op for
// templates already registered.
func (c *Catalog) Register(template string) error {
	return c.Translate(language.English, template, template)
}

// Translate registers the rendering of template in language tag.
// translation uses the same {N} placeholders as the template.
func (c *Catalog) Translate(tag language.Tag, template, translation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.builder.SetString(tag, template, ToPrintf(translation)); err != nil {
		return fmt.Errorf("message %q: %w", template, err)
	}
	c.known[template] = true
	return nil
}

// Format implements Provider.
func (c *Catalog) Format(template string, args ...string) string {
	iargs := make([]interface{}, len(args))
	for i, a := range args {
		iargs[i] = a
	}
	c.mu.RLock()
	known := c.known[template]
	c.mu.RUnlock()
	if !known {
		return fmt.Sprintf(ToPrintf(template), iargs...)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.printer.Sprintf(template, iargs...)
}

// Default renders English messages.
var Default = NewCatalog(language.English)
