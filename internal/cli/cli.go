package cli

import (
	"errors"
	"flag"
	"io"
	"strings"
)

// CLIArgs are the command-line arguments of a single import or export run.
// Empty string fields mean "use the configured value".
type CLIArgs struct {
	Endpoint string
	User     string
	Password string

	// ImportFile and ExportFile name the script to submit; exactly one is set.
	ImportFile string
	ExportFile string

	// OutDir receives export resources.
	OutDir string

	ConfigFile string
	Validation string
	LogLevel   string

	// Insecure disables TLS verification for this run when true.
	Insecure bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// IsExport reports whether the run is an export.
func (a *CLIArgs) IsExport() bool {
	return a.ExportFile != ""
}

// ScriptFile is the path of the script to submit.
func (a *CLIArgs) ScriptFile() string {
	if a.IsExport() {
		return a.ExportFile
	}
	return a.ImportFile
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("jhac", flag.ContinueOnError)
	var (
		endpoint   = fs.String("endpoint", "", "Console base url, e.g. https://localhost:9002/hac")
		user       = fs.String("user", "", "Console user")
		password   = fs.String("password", "", "Console password")
		importFile = fs.String("import", "", "Impex script to import")
		exportFile = fs.String("export", "", "Impex script to export")
		outDir     = fs.String("out", ".", "Directory for export resources")
		configFile = fs.String("config", "", "Config file (yaml, json, toml or .env)")
		validation = fs.String("validation", "", "Validation mode, e.g. IMPORT_RELAXED")
		logLevel   = fs.String("log-level", "", "Log level: debug|info|warn|error")
		insecure   = fs.Bool("insecure", false, "Skip TLS certificate verification")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	in, out := strings.TrimSpace(*importFile), strings.TrimSpace(*exportFile)
	switch {
	case in == "" && out == "":
		return nil, errors.New("one of -import or -export is required")
	case in != "" && out != "":
		return nil, errors.New("-import and -export are mutually exclusive")
	}

	return &CLIArgs{
		Endpoint:   *endpoint,
		User:       *user,
		Password:   *password,
		ImportFile: in,
		ExportFile: out,
		OutDir:     *outDir,
		ConfigFile: *configFile,
		Validation: *validation,
		LogLevel:   *logLevel,
		Insecure:   *insecure,
		RawArgs:    args,
	}, nil
}
