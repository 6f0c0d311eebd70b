// Command demoserver starts a local stand-in for the administration console
// so jhac can be tried without a commerce installation.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/jlolling/jhac/internal/demoserver"
	"github.com/jlolling/jhac/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   jhac Demo Console")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Printf("Login:   %s / %s\n", cfg.Username, cfg.Password)
	fmt.Printf("Console: http://localhost:%d%s\n", cfg.Port, cfg.BasePath)
	fmt.Println()
	fmt.Println("Scripts containing ERROR fail with an import error;")
	fmt.Println("empty scripts are rejected by the console itself.")
	fmt.Println()

	logger := logging.NewStdoutLogger("demoserver")
	defer func() { _ = logger.Sync() }()

	server := demoserver.NewDemoServer(cfg, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
