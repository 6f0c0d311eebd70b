package webclient

import "github.com/jlolling/jhac/internal/logging"

func init() {
	RegisterDefaultBackends()
}

// RegisterDefaultBackends registers the nethttp backend. Each constructed
// client gets its own cookie jar so sessions never leak between clients.
func RegisterDefaultBackends() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
}
