package hac

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Config identifies a console and the account used to sign in.
type Config struct {
	// Endpoint is the console base url, e.g. https://localhost:9002/hac.
	Endpoint string
	Username string
	Password string
}

func DefaultConfig() Config {
	return Config{
		Endpoint: "https://localhost:9002/hac",
		Username: "admin",
	}
}

// Validate checks the endpoint is an absolute http(s) url and credentials are set.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("hac: endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("hac: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("hac: endpoint scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("hac: endpoint %q has no host", c.Endpoint)
	}
	if c.Username == "" {
		return errors.New("hac: username is required")
	}
	return nil
}
