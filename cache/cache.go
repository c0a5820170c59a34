// Copyright © 2024 The NRefactory authors

// Package cache stores lint results keyed by file content so unchanged
// files are not analyzed twice. Entries live in an in-memory LRU and,
// optionally, as msgpack files on disk.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ezhangle/NRefactory/lint"
)

// Current schema version - increment when the entry format changes.
const schemaVersion uint16 = 1

// DefaultSize is the number of entries kept in memory when New is given a
// non-positive size.
const DefaultSize = 1024

type entry struct {
	Schema      uint16                `msgpack:"schema"`
	Diagnostics []lint.WireDiagnostic `msgpack:"diags"`
}

// Cache implements lint.ResultCache. It is safe for concurrent use. A nil
// *Cache never hits and drops every Put.
type Cache struct {
	mem *lru.Cache[string, []lint.WireDiagnostic]
	dir string
	mu  sync.RWMutex
	log logrus.FieldLogger

	hits   atomic.Int64
	misses atomic.Int64
}

var _ lint.ResultCache = (*Cache)(nil)

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// New returns a cache holding up to size entries in memory. When dir is
// not empty entries are also written below it and survive the process.
func New(size int, dir string, log logrus.FieldLogger) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	mem, err := lru.New[string, []lint.WireDiagnostic](size)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Cache{mem: mem, dir: dir, log: log}, nil
}

// DefaultDir returns the per-user cache directory for app, honoring
// XDG_CACHE_HOME.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

func (c *Cache) pathFor(key string) string {
	prefix := "xx"
	if len(key) >= 2 {
		prefix = key[:2]
	}
	return filepath.Join(c.dir, "results", prefix, key+".mp")
}

// Get returns the diagnostics stored under key.
func (c *Cache) Get(key string) ([]lint.WireDiagnostic, bool) {
	if c == nil {
		return nil, false
	}
	if diags, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		return diags, true
	}
	if c.dir != "" {
		diags, ok, err := c.load(key)
		if err != nil {
			c.log.WithError(err).WithField("key", key).Debug("ignoring unreadable cache entry")
		}
		if ok {
			c.mem.Add(key, diags)
			c.hits.Add(1)
			return diags, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores diags under key. Disk write failures are logged and
// otherwise ignored.
func (c *Cache) Put(key string, diags []lint.WireDiagnostic) {
	if c == nil {
		return
	}
	c.mem.Add(key, diags)
	if c.dir == "" {
		return
	}
	if err := c.store(key, diags); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("failed to write cache entry")
	}
}

func (c *Cache) load(key string) ([]lint.WireDiagnostic, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close() //nolint:errcheck // read-only
	var e entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, err
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}
	return e.Diagnostics, true, nil
}

func (c *Cache) store(key string, diags []lint.WireDiagnostic) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name()) //nolint:errcheck // gone after a successful rename
	if err := msgpack.NewEncoder(f).Encode(&entry{Schema: schemaVersion, Diagnostics: diags}); err != nil {
		f.Close() //nolint:errcheck // already failing
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Stats returns hit and miss counts since the cache was created.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.mem.Len(),
	}
}

// Purge drops every entry, including those on disk.
func (c *Cache) Purge() error {
	if c == nil {
		return nil
	}
	c.mem.Purge()
	if c.dir == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "results"))
}
