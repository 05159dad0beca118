package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/export"
	"github.com/JaimeStill/scribe/internal/items"
	"github.com/JaimeStill/scribe/internal/pipeline"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func source(name string) items.Source {
	return items.BytesSource(name, time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), []byte("%PDF "+name))
}

type outcome struct {
	text  string
	err   error
	delay time.Duration
}

type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]outcome
	calls   []string
	hook    func(name string)
}

func (f *fakeExtractor) Extract(ctx context.Context, src items.Source) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, src.Name())
	res, ok := f.results[src.Name()]
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(src.Name())
	}
	if res.delay > 0 {
		select {
		case <-time.After(res.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if !ok {
		return "text of " + src.Name(), nil
	}
	return res.text, res.err
}

func (f *fakeExtractor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeGenerator struct {
	mu      sync.Mutex
	results map[string]outcome
	calls   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, text, name string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	res, ok := f.results[name]
	f.mu.Unlock()

	if res.delay > 0 {
		select {
		case <-time.After(res.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if !ok {
		return "## Report for " + name + "\n" + text, nil
	}
	return res.text, res.err
}

func (f *fakeGenerator) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeTarget struct {
	mu     sync.Mutex
	err    error
	titles []string
	tokens []string
	block  chan struct{}
}

func (f *fakeTarget) Init(context.Context) error { return nil }

func (f *fakeTarget) Export(_ context.Context, token credentials.Token, doc export.Document) (export.Result, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, doc.Title)
	f.tokens = append(f.tokens, token.AccessToken)
	if f.err != nil {
		return export.Result{}, f.err
	}
	id := "doc-" + doc.Title
	return export.Result{ID: id, Address: "https://docs.google.com/document/d/" + id + "/edit"}, nil
}

func (f *fakeTarget) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeTarget) Titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.titles...)
}

type fakeCredentials struct {
	mu          sync.Mutex
	token       *credentials.Token
	invalidated []string
}

func signedIn() *fakeCredentials {
	return &fakeCredentials{token: &credentials.Token{AccessToken: "ya29.valid", Account: "user@example.com"}}
}

func (f *fakeCredentials) SignIn(context.Context, credentials.Prompt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = &credentials.Token{AccessToken: "ya29.fresh"}
	return nil
}

func (f *fakeCredentials) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = nil
	return nil
}

func (f *fakeCredentials) Invalidate(token credentials.Token, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == nil || f.token.AccessToken != token.AccessToken {
		return
	}
	f.token = nil
	f.invalidated = append(f.invalidated, reason)
}

func (f *fakeCredentials) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token != nil
}

func (f *fakeCredentials) Token() (credentials.Token, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == nil {
		return credentials.Token{}, false
	}
	return *f.token, true
}

func (f *fakeCredentials) Status() credentials.Status {
	phase := credentials.PhaseUnset
	if f.Valid() {
		phase = credentials.PhaseValid
	}
	return credentials.Status{Provider: "fake", Ready: true, Phase: phase.String()}
}

type harness struct {
	session   *pipeline.Session
	registry  *items.Registry
	extractor *fakeExtractor
	generator *fakeGenerator
	target    *fakeTarget
	creds     *fakeCredentials
}

func newHarness(creds *fakeCredentials) *harness {
	h := &harness{
		registry:  items.NewRegistry(),
		extractor: &fakeExtractor{results: map[string]outcome{}},
		generator: &fakeGenerator{results: map[string]outcome{}},
		target:    &fakeTarget{},
		creds:     creds,
	}
	h.session = pipeline.New(h.registry, creds, h.extractor, h.generator, h.target, discard())
	return h
}

func (h *harness) item(name string) items.Item {
	for it := range h.registry.All() {
		if it.Name == name {
			return it
		}
	}
	panic("no item named " + name)
}

var errAuth = errors.Join(export.ErrUnauthenticated, errors.New("googleapi: Error 401: Request had invalid authentication credentials"))
