package demoserver

// Config holds configuration for the demo console.
type Config struct {
	// Port is the port on which the demo console listens.
	Port int

	// BasePath is the path prefix the console is mounted under (default: /hac).
	BasePath string

	// Username and Password are the only accepted credentials.
	Username string
	Password string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:     9999,
		BasePath: "/hac",
		Username: "admin",
		Password: "nimda",
	}
}
