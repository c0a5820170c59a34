// Copyright © 2024 The NRefactory authors

package lsp

import (
	"context"
	"sync"

	"github.com/ezhangle/NRefactory/analysis"
	"github.com/ezhangle/NRefactory/lint"
	"github.com/ezhangle/NRefactory/parser"
)

// snapshot is one immutable version of a document with its parse and
// semantic model. Handlers read a snapshot without holding locks.
type snapshot struct {
	Version  int32
	Content  string
	File     *parser.File
	Model    *analysis.Result
	ParseErr error
	lines    *lineIndex
}

func newSnapshot(uri string, version int32, content string) *snapshot {
	snap := &snapshot{
		Version: version,
		Content: content,
		lines:   newLineIndex(content),
	}
	path := uriToPath(uri)
	f, err := parser.Parse(context.Background(), path, []byte(content))
	if err != nil {
		snap.ParseErr = err
		return snap
	}
	snap.File = f
	snap.Model = analysis.Analyze(f.Tree, &analysis.Config{Filename: path})
	return snap
}

// Document represents an open text document tracked by the LSP server.
type Document struct {
	URI string

	mu   sync.Mutex
	snap *snapshot
	// diags are the lint results of the last pass that completed for
	// diagsVersion.
	diags        []lint.Diagnostic
	diagsVersion int32
	// cancel stops the pass currently running for this document.
	cancel context.CancelFunc
}

// current returns the current version of the document, nil once closed.
func (d *Document) current() *snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap
}

// Version returns the current document version.
func (d *Document) Version() int32 {
	if snap := d.current(); snap != nil {
		return snap.Version
	}
	return 0
}

// Content returns the current document text.
func (d *Document) Content() string {
	if snap := d.current(); snap != nil {
		return snap.Content
	}
	return ""
}

// Diagnostics returns the lint diagnostics of the current version, or nil
// when no pass has completed for it yet.
func (d *Document) Diagnostics() []lint.Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap == nil || d.diagsVersion != d.snap.Version {
		return nil
	}
	return d.diags
}

// beginPass cancels any running pass and returns a context for a new one
// over the current snapshot.
func (d *Document) beginPass(parent context.Context) (context.Context, *snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	return ctx, d.snap
}

// endPass stores the result of a pass over snap. It reports false when the
// document changed while the pass ran, in which case the result is stale.
func (d *Document) endPass(snap *snapshot, diags []lint.Diagnostic) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap != snap {
		return false
	}
	d.diags = diags
	d.diagsVersion = snap.Version
	return true
}

// update installs a new snapshot and cancels the pass over the old one.
func (d *Document) update(snap *snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.snap = snap
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{URI: uri, snap: newSnapshot(uri, version, content)}
	s.mu.Lock()
	if old, ok := s.docs[uri]; ok {
		old.update(nil)
	}
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change replaces a document's content (full sync) and re-parses it.
// Versions older than the current one are ignored.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	if cur := doc.current(); cur != nil && version < cur.Version {
		return doc
	}
	doc.update(newSnapshot(uri, version, content))
	return doc
}

// Close removes a document from the store and cancels its pass.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if ok {
		doc.update(nil)
	}
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns every open document.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out
}
