// Copyright © 2024 The NRefactory authors

// Package lsp implements a Language Server Protocol server for nrlint.
// It publishes lint diagnostics for open C# documents and provides quick
// fixes, hover help for findings, document symbols and folding ranges.
package lsp

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/ezhangle/NRefactory/lint"
	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	serverName    = "nrlint-lsp"
	serverVersion = "0.1.0"

	// diagnosticSource is the source of every published rule finding.
	diagnosticSource = "nrlint"

	// parserSource is the source of parse failures and syntax errors.
	parserSource = "nrlint-parser"
)

// Server is the nrlint language server.
type Server struct {
	handler protocol.Handler
	glspSrv *glspserver.Server
	docs    *DocumentStore

	// Linter instance shared across diagnostics runs.
	linter *lint.Linter
	log    logrus.FieldLogger

	// ctx parents every pass and is canceled on shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	// Debouncer for didChange notifications.
	debounceMu    sync.Mutex
	debounce      map[string]*time.Timer
	debounceDelay time.Duration

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
	// shutdownSeen is set once the client sent shutdown.
	shutdownSeen bool
}

// Option configures the LSP server.
type Option func(*Server)

// WithLinter replaces the default linter. Its Rules, Severity and Metrics
// apply to every document.
func WithLinter(l *lint.Linter) Option {
	return func(s *Server) { s.linter = l }
}

// WithLogger sets the server's logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// WithDebounce sets how long edits must pause before a document is linted.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) { s.debounceDelay = d }
}

// New creates a new nrlint LSP server.
func New(opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		docs:          NewDocumentStore(),
		ctx:           ctx,
		cancel:        cancel,
		debounce:      make(map[string]*time.Timer),
		debounceDelay: defaultDebounce,
		exitFn:        os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.linter == nil {
		s.linter = &lint.Linter{Rules: lint.EnabledRules()}
	}
	if s.log == nil {
		log := logrus.New()
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.WarnLevel)
		s.log = log
	}
	if s.linter.Logger == nil {
		s.linter.Logger = s.log
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentCodeAction:     s.textDocumentCodeAction,
		TextDocumentFoldingRange:   s.textDocumentFoldingRange,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.ClientInfo != nil {
		s.log.WithField("client", params.ClientInfo.Name).Info("initialize")
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
	}

	version := serverVersion
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	return nil
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.shutdownSeen = true
	s.debounceMu.Unlock()

	s.cancel()
	return nil
}

// exit handles the LSP exit notification by terminating the process with
// 0 after a shutdown request and 1 otherwise.
func (s *Server) exit(_ *glsp.Context) error {
	s.debounceMu.Lock()
	code := 1
	if s.shutdownSeen {
		code = 0
	}
	s.debounceMu.Unlock()
	s.exitFn(code)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ruleDoc returns the Doc text of the rule with the given id, if the linter
// runs it.
func (s *Server) ruleDoc(id string) string {
	for _, r := range s.linter.Rules {
		if a, ok := r.(*lint.Analyzer); ok && a.Desc.ID == id {
			return a.Doc
		}
	}
	return ""
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
