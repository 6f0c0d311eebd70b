package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// Config controls how a WebClient backend is constructed.
type Config struct {
	Client Client

	// Timeout bounds a single request including redirects. Zero means 30s.
	Timeout time.Duration

	// UserAgent is sent with every request when non-empty.
	UserAgent string

	// InsecureSkipVerify disables TLS certificate verification. Consoles
	// commonly run with self-signed certificates on local installations.
	InsecureSkipVerify bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Client:    ClientNetHTTP,
		Timeout:   30 * time.Second,
		UserAgent: "jhac/1.0",
	}
}
