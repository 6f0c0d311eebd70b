// Package hac is an authenticated connection to the hybris Administration
// Console. It signs in through the Spring Security form login and sends the
// CSRF token the console requires on every POST.
package hac

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/jlolling/jhac/internal/logging"
	"github.com/jlolling/jhac/internal/webclient"
)

const (
	LoginPath         = "/login"
	LoginCheckPath    = "/j_spring_security_check"
	formContentType   = "application/x-www-form-urlencoded; charset=UTF-8"
	usernameParam     = "j_username"
	passwordParam     = "j_password"
	contentTypeHeader = "Content-Type"
)

// Session signs in lazily on first use and keeps the session cookie in the
// webclient's cookie jar. It is safe for concurrent use when wc is.
type Session struct {
	endpoint string
	cfg      Config
	wc       webclient.WebClient
	logger   logging.Logger

	mu       sync.Mutex
	loggedIn bool
}

// NewSession validates cfg and returns a session that is not yet signed in.
func NewSession(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if wc == nil {
		return nil, fmt.Errorf("hac: webclient is nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	return &Session{
		endpoint: endpoint,
		cfg:      cfg,
		wc:       wc,
		logger: logger.With(
			logging.Field{Key: "component", Value: "hac_session"},
			logging.Field{Key: "endpoint", Value: endpoint}),
	}, nil
}

// Endpoint returns the console base url without a trailing slash.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// Login signs in unless the session already has.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn {
		return nil
	}

	s.logger.Info("logging in", logging.Field{Key: "user", Value: s.cfg.Username})

	token, err := s.csrfFor(ctx, LoginPath)
	if err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	form := url.Values{}
	form.Set(usernameParam, s.cfg.Username)
	form.Set(passwordParam, s.cfg.Password)
	form.Set(csrfParam, token.Value)

	resp, err := s.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     s.endpoint + LoginCheckPath,
		Headers: http.Header{contentTypeHeader: []string{formContentType}},
		Body:    []byte(form.Encode()),
	})
	if err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	if isLoginPage(resp.FinalURL) {
		s.logger.Warn("login rejected", logging.Field{Key: "user", Value: s.cfg.Username})
		return ErrAuthentication
	}

	s.loggedIn = true
	s.logger.Info("logged in", logging.Field{Key: "user", Value: s.cfg.Username})
	return nil
}

// Execute posts form to path with a fresh CSRF token read from the page at
// path. An empty contentType selects url-encoded form data.
func (s *Session) Execute(ctx context.Context, form url.Values, path, contentType string) (string, error) {
	if err := s.Login(ctx); err != nil {
		return "", err
	}

	token, err := s.csrfFor(ctx, path)
	if err != nil {
		if errors.Is(err, ErrAuthentication) {
			s.invalidate()
		}
		return "", fmt.Errorf("prepare %s: %w", path, err)
	}

	if contentType == "" {
		contentType = formContentType
	}

	body := cloneValues(form)
	body.Set(csrfParam, token.Value)

	headers := http.Header{}
	headers.Set(contentTypeHeader, contentType)
	headers.Set(token.Header, token.Value)

	s.logger.Debug("posting form", logging.Field{Key: "path", Value: path})
	resp, err := s.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     s.endpoint + path,
		Headers: headers,
		Body:    []byte(body.Encode()),
	})
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}
	if err := checkStatus(resp); err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// Fetch downloads rawURL within the session.
func (s *Session) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := s.Login(ctx); err != nil {
		return nil, err
	}

	resp, err := s.wc.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Close releases the underlying webclient.
func (s *Session) Close() error {
	return s.wc.Close()
}

// invalidate forces the next call to sign in again.
func (s *Session) invalidate() {
	s.mu.Lock()
	s.loggedIn = false
	s.mu.Unlock()
}

func (s *Session) csrfFor(ctx context.Context, path string) (csrfToken, error) {
	resp, err := s.wc.Get(ctx, s.endpoint+path)
	if err != nil {
		return csrfToken{}, err
	}
	if err := checkStatus(resp); err != nil {
		return csrfToken{}, err
	}
	if path != LoginPath && isLoginPage(resp.FinalURL) {
		return csrfToken{}, fmt.Errorf("session expired: %w", ErrAuthentication)
	}
	return extractCSRF(resp.Body)
}

func checkStatus(resp *webclient.Response) error {
	if resp.StatusCode >= http.StatusBadRequest {
		u := resp.FinalURL
		if u == "" && resp.Request != nil {
			u = resp.Request.URL
		}
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return nil
}

func isLoginPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(u.Path, "/"), LoginPath)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
