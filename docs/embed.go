// Copyright © 2024 The NRefactory authors

// Package docs embeds the rule reference pages for use by the CLI and the
// language server.
package docs

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed rules/*.md
var rulesFS embed.FS

// Rule returns the markdown page of the rule with the given id.
func Rule(id string) (string, bool) {
	b, err := rulesFS.ReadFile("rules/" + id + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}

// RuleIDs lists the ids that have a reference page, in order.
func RuleIDs() []string {
	entries, err := fs.ReadDir(rulesFS, "rules")
	if err != nil {
		return nil
	}
	var ids []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".md"); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids
}

// Summary returns the page body without its heading line.
func Summary(page string) string {
	_, body, ok := strings.Cut(page, "\n")
	if !ok || !strings.HasPrefix(page, "# ") {
		return strings.TrimSpace(page)
	}
	return strings.TrimSpace(body)
}
