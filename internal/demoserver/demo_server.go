package demoserver

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jlolling/jhac/internal/logging"
)

const (
	sessionCookie = "JSESSIONID"
	csrfHeader    = "X-CSRF-TOKEN"
	csrfParam     = "_csrf"

	// ErrorMarker makes a submitted script fail with a data-level error.
	ErrorMarker = "ERROR"

	exportDir = "export"
)

type session struct {
	csrf          string
	authenticated bool
}

// DemoServer imitates the administration console's login and impex pages
// closely enough for the client to run against it.
type DemoServer struct {
	cfg    Config
	logger logging.Logger

	mu       sync.RWMutex
	sessions map[string]*session
	exports  map[string][]byte
}

// NewDemoServer creates a new demo console instance.
func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cfg.BasePath = "/" + strings.Trim(cfg.BasePath, "/")
	if cfg.BasePath == "/" {
		cfg.BasePath = ""
	}
	return &DemoServer{
		cfg:      cfg,
		logger:   logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		sessions: make(map[string]*session),
		exports:  make(map[string][]byte),
	}
}

// Handler returns the console routes mounted under the configured base path.
func (s *DemoServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	routes := func(r chi.Router) {
		r.Get("/login", s.loginPageHandler)
		r.Post("/j_spring_security_check", s.loginCheckHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.homeHandler)
			r.Get("/impex/import", s.impexPageHandler("Import"))
			r.Get("/impex/export", s.impexPageHandler("Export"))
			r.Get("/impex/"+exportDir+"/{name}", s.downloadHandler)

			r.Group(func(r chi.Router) {
				r.Use(s.requireCSRF)
				r.Post("/impex/import", s.importHandler)
				r.Post("/impex/export", s.exportHandler)
			})
		})
	}

	if s.cfg.BasePath == "" {
		routes(r)
	} else {
		r.Route(s.cfg.BasePath, routes)
	}
	return r
}

// Start serves the console on the configured port.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("demo console starting",
		logging.Field{Key: "url", Value: fmt.Sprintf("http://localhost%s%s", addr, s.cfg.BasePath)})

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// sessionFor returns the caller's session, creating one and setting the
// cookie when the request carries none.
func (s *DemoServer) sessionFor(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.RLock()
		sess, ok := s.sessions[c.Value]
		s.mu.RUnlock()
		if ok {
			return sess
		}
	}

	id := uuid.NewString()
	sess := &session{csrf: uuid.NewString()}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true})
	return sess
}

func (s *DemoServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path})
		next.ServeHTTP(w, r)
	})
}

func (s *DemoServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessionFor(w, r)
		s.mu.RLock()
		ok := sess.authenticated
		s.mu.RUnlock()
		if !ok {
			http.Redirect(w, r, s.cfg.BasePath+"/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *DemoServer) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessionFor(w, r)
		token := r.Header.Get(csrfHeader)
		if token == "" {
			token = r.FormValue(csrfParam)
		}
		if token == "" || token != sess.csrf {
			http.Error(w, "Invalid CSRF Token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *DemoServer) render(w http.ResponseWriter, name string, data pageData) {
	data.Base = s.cfg.BasePath
	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render page", logging.Field{Key: "page", Value: name}, logging.Field{Key: "error", Value: err})
	}
}

func (s *DemoServer) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	_, failed := r.URL.Query()["error"]
	s.render(w, "login", pageData{Title: "Login", CSRF: sess.csrf, LoginFailed: failed})
}

func (s *DemoServer) loginCheckHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if r.FormValue(csrfParam) != sess.csrf {
		http.Error(w, "Invalid CSRF Token", http.StatusForbidden)
		return
	}

	if r.FormValue("j_username") != s.cfg.Username || r.FormValue("j_password") != s.cfg.Password {
		s.logger.Warn("login rejected", logging.Field{Key: "user", Value: r.FormValue("j_username")})
		http.Redirect(w, r, s.cfg.BasePath+"/login?error", http.StatusFound)
		return
	}

	s.mu.Lock()
	sess.authenticated = true
	s.mu.Unlock()
	http.Redirect(w, r, s.cfg.BasePath+"/", http.StatusFound)
}

func (s *DemoServer) homeHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	s.render(w, "home", pageData{Title: "Home", CSRF: sess.csrf})
}

func (s *DemoServer) impexPageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessionFor(w, r)
		s.render(w, "impex", pageData{Title: title, CSRF: sess.csrf})
	}
}

func (s *DemoServer) importHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	script := r.FormValue("scriptContent")
	data := pageData{
		Title:      "Import",
		CSRF:       sess.csrf,
		Script:     script,
		Validation: r.FormValue("validationEnum"),
	}

	if strings.TrimSpace(script) == "" {
		data.Errors = []string{"Script content must not be empty"}
		s.render(w, "impex", data)
		return
	}

	data.Submitted = true
	data.ResultText = scriptError(script)
	s.render(w, "impex", data)
}

func (s *DemoServer) exportHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	script := r.FormValue("scriptContent")
	data := pageData{
		Title:      "Export",
		CSRF:       sess.csrf,
		Script:     script,
		Validation: r.FormValue("validationEnum"),
		Submitted:  true,
	}

	if msg := scriptError(script); msg != "" {
		data.ResultText = msg
		s.render(w, "impex", data)
		return
	}

	archive, err := exportArchive(script)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	name := uuid.NewString() + ".zip"
	s.mu.Lock()
	s.exports[name] = archive
	s.mu.Unlock()

	data.Downloads = []string{exportDir + "/" + name}
	s.render(w, "impex", data)
}

func (s *DemoServer) downloadHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.RLock()
	archive, ok := s.exports[name]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(archive)
}

// scriptError returns the console's message for the first line carrying
// ErrorMarker, or "".
func scriptError(script string) string {
	for i, line := range strings.Split(script, "\n") {
		if strings.Contains(line, ErrorMarker) {
			return fmt.Sprintf("ImpExException: line %d: %s", i+1, strings.TrimSpace(line))
		}
	}
	return ""
}

// exportArchive packs the script the way the console does for re-import.
func exportArchive(script string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("importscript.impex")
	if err != nil {
		return nil, fmt.Errorf("create archive entry: %w", err)
	}
	if _, err := f.Write([]byte(script)); err != nil {
		return nil, fmt.Errorf("write archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
