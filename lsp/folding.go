// Copyright © 2024 The NRefactory authors

package lsp

import (
	"strings"

	"github.com/ezhangle/NRefactory/astutil"
	"github.com/ezhangle/NRefactory/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It folds multi-line declarations and blocks, runs of using directives,
// #region pairs and consecutive comment lines.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	snap := doc.current()
	if snap == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	if snap.File != nil {
		ranges = append(ranges, nodeFoldingRanges(snap.File.Tree.Root)...)
		ranges = append(ranges, usingFoldingRanges(snap.File.Tree.Root)...)
	}
	ranges = append(ranges, regionFoldingRanges(snap.Content)...)
	ranges = append(ranges, commentFoldingRanges(snap.Content)...)
	return ranges, nil
}

// foldable reports whether nodes of kind k get a folding range of their own.
func foldable(k syntax.Kind) bool {
	switch k {
	case syntax.KindNamespace, syntax.KindBlock, syntax.KindInitializer,
		syntax.KindAccessor, syntax.KindLambda, syntax.KindAnonymousMethod:
		return true
	}
	return k.IsTypeDeclaration() || k.IsMemberDeclaration()
}

// nodeFoldingRanges walks the tree and emits a range for each foldable node
// that spans more than one line. The last line stays visible so the
// closing brace shows.
func nodeFoldingRanges(root *syntax.Node) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	seen := make(map[int]bool)
	astutil.Walk(root, func(n *syntax.Node, _ *syntax.Node, _ int) {
		if !foldable(n.Kind) {
			return
		}
		start, end := n.Span.Start.Line-1, n.Span.End.Line-1
		if end-1 <= start || seen[start] {
			return
		}
		// A method and its body usually start on the same line; the outer
		// node wins.
		seen[start] = true
		kind := string(protocol.FoldingRangeKindRegion)
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: safeUint(start),
			EndLine:   safeUint(end - 1),
			Kind:      &kind,
		})
	})
	return ranges
}

// usingFoldingRanges folds each run of two or more using directives.
func usingFoldingRanges(root *syntax.Node) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	var first, last *syntax.Node
	flush := func() {
		if first != nil && last.Span.End.Line > first.Span.Start.Line {
			kind := string(protocol.FoldingRangeKindImports)
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(first.Span.Start.Line - 1),
				EndLine:   safeUint(last.Span.End.Line - 1),
				Kind:      &kind,
			})
		}
		first, last = nil, nil
	}
	astutil.Inspect(root, func(n *syntax.Node) bool {
		if n.Kind != syntax.KindCompilationUnit && n.Kind != syntax.KindNamespace {
			return false
		}
		for _, c := range n.Children {
			if c.Kind != syntax.KindUsing {
				flush()
				continue
			}
			if first == nil {
				first = c
			}
			last = c
		}
		flush()
		return true
	})
	return ranges
}

// regionFoldingRanges pairs #region and #endregion directives.
func regionFoldingRanges(content string) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	var open []int
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#region"):
			open = append(open, i)
		case strings.HasPrefix(trimmed, "#endregion"):
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			kind := string(protocol.FoldingRangeKindRegion)
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(start),
				EndLine:   safeUint(i),
				Kind:      &kind,
			})
		}
	}
	return ranges
}

// commentFoldingRanges detects consecutive lines starting with "//" and
// produces a folding range for each block of 2+ lines.
func commentFoldingRanges(content string) []protocol.FoldingRange {
	lines := strings.Split(content, "\n")
	var ranges []protocol.FoldingRange

	blockStart := -1
	emit := func(end int) {
		if blockStart >= 0 && end > blockStart {
			kind := string(protocol.FoldingRangeKindComment)
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: safeUint(blockStart),
				EndLine:   safeUint(end),
				Kind:      &kind,
			})
		}
		blockStart = -1
	}
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			if blockStart < 0 {
				blockStart = i
			}
			continue
		}
		emit(i - 1)
	}
	emit(len(lines) - 1)
	return ranges
}
