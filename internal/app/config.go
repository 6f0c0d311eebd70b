package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jlolling/jhac/internal/cli"
	"github.com/jlolling/jhac/internal/hac"
	"github.com/jlolling/jhac/internal/webclient"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "JHAC"

const (
	keyEndpoint           = "endpoint"
	keyUsername           = "username"
	keyPassword           = "password"
	keyTimeout            = "timeout"
	keyInsecureSkipVerify = "insecure_skip_verify"
	keyUserAgent          = "user_agent"
	keyLogLevel           = "log_level"
)

// Config aggregates the per-package configuration of a jhac run.
type Config struct {
	HAC       hac.Config
	WebClient webclient.Config

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultConfig returns a Config populated with local-installation defaults.
func DefaultConfig() *Config {
	return &Config{
		HAC:       hac.DefaultConfig(),
		WebClient: webclient.DefaultConfig(),
		LogLevel:  "info",
	}
}

// LoadConfig layers defaults, the optional file at path and JHAC_* environment
// variables, in increasing priority. The file format follows its extension.
func LoadConfig(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault(keyEndpoint, def.HAC.Endpoint)
	v.SetDefault(keyUsername, def.HAC.Username)
	v.SetDefault(keyPassword, def.HAC.Password)
	v.SetDefault(keyTimeout, def.WebClient.Timeout.String())
	v.SetDefault(keyInsecureSkipVerify, def.WebClient.InsecureSkipVerify)
	v.SetDefault(keyUserAgent, def.WebClient.UserAgent)
	v.SetDefault(keyLogLevel, def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	timeout, err := parseTimeout(v.GetString(keyTimeout))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HAC: hac.Config{
			Endpoint: v.GetString(keyEndpoint),
			Username: v.GetString(keyUsername),
			Password: v.GetString(keyPassword),
		},
		WebClient: webclient.Config{
			Client:             webclient.ClientNetHTTP,
			Timeout:            timeout,
			UserAgent:          v.GetString(keyUserAgent),
			InsecureSkipVerify: v.GetBool(keyInsecureSkipVerify),
		},
		LogLevel: v.GetString(keyLogLevel),
	}
	return cfg, nil
}

// parseTimeout accepts a Go duration ("45s") or a plain number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if d, err := time.ParseDuration(s + "s"); err == nil {
		return d, nil
	}
	return 0, fmt.Errorf("invalid timeout %q", s)
}

// ApplyArgs overrides configured values with the flags given on the command line.
func (c *Config) ApplyArgs(args *cli.CLIArgs) {
	if args == nil {
		return
	}
	if args.Endpoint != "" {
		c.HAC.Endpoint = args.Endpoint
	}
	if args.User != "" {
		c.HAC.Username = args.User
	}
	if args.Password != "" {
		c.HAC.Password = args.Password
	}
	if args.LogLevel != "" {
		c.LogLevel = args.LogLevel
	}
	if args.Insecure {
		c.WebClient.InsecureSkipVerify = true
	}
}

// Validate checks the aggregated configuration.
func (c *Config) Validate() error {
	if err := c.HAC.Validate(); err != nil {
		return err
	}
	if c.WebClient.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
