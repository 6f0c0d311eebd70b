// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/jlolling/jhac/internal/logging"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── Transport ─────────────────────────────────────────────────────────

// ExecuteCall records one Execute invocation.
type ExecuteCall struct {
	Form        url.Values
	Path        string
	ContentType string
}

// DummyTransport implements impex.Transport.
// Execute returns Pages[path]; Fetch returns Resources[url].
// Set FailURLs[url] = true to force a Fetch error for a specific URL.
type DummyTransport struct {
	BaseURL    string
	Pages      map[string]string
	Resources  map[string][]byte
	FailURLs   map[string]bool
	ExecuteErr error

	mu       sync.Mutex
	Executes []ExecuteCall
	Fetches  []string
}

func (d *DummyTransport) Execute(_ context.Context, form url.Values, path, contentType string) (string, error) {
	d.mu.Lock()
	d.Executes = append(d.Executes, ExecuteCall{Form: form, Path: path, ContentType: contentType})
	d.mu.Unlock()

	if d.ExecuteErr != nil {
		return "", d.ExecuteErr
	}
	return d.Pages[path], nil
}

func (d *DummyTransport) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	d.mu.Lock()
	d.Fetches = append(d.Fetches, rawURL)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[rawURL] {
		return nil, &errString{"dummy fetch fail for " + rawURL}
	}
	data, ok := d.Resources[rawURL]
	if !ok {
		return nil, fmt.Errorf("no resource for %s", rawURL)
	}
	return data, nil
}

func (d *DummyTransport) Endpoint() string { return d.BaseURL }

// FetchCount returns how many Fetch calls were made.
func (d *DummyTransport) FetchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Fetches)
}

// MockTransport is a testify mock of impex.Transport for expectation based tests.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Execute(ctx context.Context, form url.Values, path, contentType string) (string, error) {
	args := m.Called(ctx, form, path, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	args := m.Called(ctx, rawURL)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransport) Endpoint() string {
	return m.Called().String(0)
}

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
