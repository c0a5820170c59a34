// Copyright © 2024 The NRefactory authors

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ezhangle/NRefactory/lint"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long to wait for more changes before re-linting.
const watchDebounce = 200 * time.Millisecond

// watch lints paths once and then re-lints changed source files until ctx
// is done. It returns the exit code of the last run.
func (r *lintRun) watch(ctx context.Context, l *lint.Linter, args []string, paths []string) int {
	code := r.lintPaths(ctx, l, paths)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.errorf("watch: %v", err)
		return exitUsage
	}
	defer w.Close()

	for _, dir := range watchDirs(args, paths) {
		if err := w.Add(dir); err != nil {
			r.log.WithError(err).WithField("path", dir).Warn("failed to watch directory")
			continue
		}
		r.log.WithField("path", dir).Debug("watching directory")
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return code

		case ev, ok := <-w.Events:
			if !ok {
				return code
			}
			if !relevant(ev) || matchesAny(ev.Name, r.cfg.Exclude) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
					continue
				}
			}
			pending[ev.Name] = true
			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return code
			}
			r.log.WithError(err).Warn("watcher error")

		case <-timer.C:
			changed := existing(pending)
			pending = make(map[string]bool)
			if len(changed) == 0 {
				continue
			}
			r.log.WithField("files", len(changed)).Info("re-linting")
			code = r.lintPaths(ctx, l, changed)
		}
	}
}

// relevant reports whether ev may change the findings of a source file.
func relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		return true
	}
	return filepath.Ext(ev.Name) == sourceExt && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename))
}

// watchDirs returns the directories to watch: directory arguments and
// every directory below them, plus the parent of every file.
func watchDirs(args []string, paths []string) []string {
	seen := make(map[string]bool)
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			_ = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if d.IsDir() {
					if path != arg && skipDirs[d.Name()] {
						return filepath.SkipDir
					}
					seen[filepath.Clean(path)] = true
				}
				return nil
			})
		}
	}
	for _, p := range paths {
		seen[filepath.Dir(p)] = true
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// existing returns the sorted source files of set that still exist.
func existing(set map[string]bool) []string {
	var out []string
	for p := range set {
		if filepath.Ext(p) != sourceExt {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
