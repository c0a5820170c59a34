// Copyright © 2024 The NRefactory authors

package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const sourceExt = ".cs"

// Directories never descended into when expanding a directory argument.
var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	"node_modules": true,
}

// expandArgs resolves command-line paths to C# source files. An argument
// may be a file, a directory (searched recursively), a pattern ending with
// "/..." or a doublestar glob such as "src/**/*.cs". Paths matching any of
// excludes are dropped; explicit file arguments are kept regardless of
// their extension.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] || matchesAny(path, excludes) {
			return
		}
		seen[path] = true
		out = append(out, path)
	}
	for _, arg := range args {
		if dir, ok := strings.CutSuffix(arg, "/..."); ok {
			if dir == "" {
				dir = "."
			}
			files, err := findSources(dir, excludes)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			for _, f := range files {
				add(f)
			}
			continue
		}
		if isGlob(arg) {
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			for _, m := range matches {
				if filepath.Ext(m) == sourceExt {
					add(m)
				}
			}
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		files, err := findSources(arg, excludes)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

func isGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

func findSources(root string, excludes []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || matchesAny(path, excludes)) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == sourceExt {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// matchesAny reports whether path matches a pattern as a whole, by its
// base name, or through any single path component.
func matchesAny(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	parts := strings.Split(slashed, "/")
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
		if strings.Contains(pattern, "/") {
			continue
		}
		for _, part := range parts {
			if ok, _ := doublestar.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}
