// Copyright © 2024 The NRefactory authors

package lsp

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ezhangle/NRefactory/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// lineIndex maps between byte offsets and LSP positions, which count
// UTF-16 code units within a line.
type lineIndex struct {
	content string
	starts  []int // byte offset of the first byte of each line
}

func newLineIndex(content string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{content: content, starts: starts}
}

// lineCount returns the number of lines, counting a trailing empty line.
func (x *lineIndex) lineCount() int {
	return len(x.starts)
}

// lineText returns line (0-based) without its terminator.
func (x *lineIndex) lineText(line int) string {
	if line < 0 || line >= len(x.starts) {
		return ""
	}
	end := len(x.content)
	if line+1 < len(x.starts) {
		end = x.starts[line+1] - 1
	}
	return strings.TrimSuffix(x.content[x.starts[line]:end], "\r")
}

// position converts a byte offset to an LSP position.
func (x *lineIndex) position(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.content) {
		offset = len(x.content)
	}
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(utf16Len(x.content[x.starts[line]:offset])),
	}
}

// offset converts an LSP position to a byte offset. Characters past the end
// of the line clamp to the line end.
func (x *lineIndex) offset(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(x.starts) {
		return len(x.content)
	}
	start := x.starts[line]
	text := x.lineText(line)
	want := int(pos.Character)
	units := 0
	for i, r := range text {
		if units >= want {
			return start + i
		}
		units += utf16.RuneLen(r)
	}
	return start + len(text)
}

// rangeOf converts a syntax span to an LSP range. The byte offsets of the
// span are authoritative; line and column are not consulted.
func (x *lineIndex) rangeOf(sp syntax.Span) protocol.Range {
	return protocol.Range{
		Start: x.position(sp.Start.Offset),
		End:   x.position(sp.End.Offset),
	}
}

// utf16Len counts the UTF-16 code units of s. Invalid bytes count as one
// unit each, matching how editors display replacement characters.
func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == utf8.RuneError && size == 1 {
			n++
			continue
		}
		n += utf16.RuneLen(r)
	}
	return n
}

// containsPos reports whether pos lies in r. The end is inclusive so a
// cursor placed right after a token still hits it.
func containsPos(r protocol.Range, pos protocol.Position) bool {
	return !before(pos, r.Start) && !before(r.End, pos)
}

// overlaps reports whether two ranges share at least one position.
func overlaps(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// uriToPath converts a file:// URI to a filesystem path. Other URIs are
// returned unchanged.
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}

// pathToURI converts an absolute filesystem path to a file:// URI.
func pathToURI(path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}
