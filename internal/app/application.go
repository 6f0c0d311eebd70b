package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jlolling/jhac/internal/cli"
	"github.com/jlolling/jhac/internal/hac"
	"github.com/jlolling/jhac/internal/impex"
	"github.com/jlolling/jhac/internal/logging"
	"github.com/jlolling/jhac/internal/webclient"
)

// ErrImpexFailed is returned by Run when the console reported a data error.
var ErrImpexFailed = errors.New("impex reported an error")

// Exit codes of the jhac command.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitCommunicationError = 2
)

// Application is the runtime state of a single jhac run.
// It holds config, parsed CLI args and the services built from them.
type Application struct {
	Config *Config
	Args   *cli.CLIArgs
	Logger logging.Logger

	// Registry collects the impex metrics of this run.
	Registry *prometheus.Registry

	session *hac.Session
	client  *impex.ImportExport
}

// NewApplication wires webclient, console session and impex client from cfg.
func NewApplication(cfg *Config, args *cli.CLIArgs, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if args == nil {
		return nil, errors.New("args are nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	wc, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		return nil, fmt.Errorf("create webclient: %w", err)
	}
	session, err := hac.NewSession(cfg.HAC, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics, err := impex.NewMetrics(reg)
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	return &Application{
		Config:   cfg,
		Args:     args,
		Logger:   logger,
		Registry: reg,
		session:  session,
		client:   impex.New(session, impex.WithLogger(logger), impex.WithMetrics(metrics)),
	}, nil
}

// Run submits the script named by the args and reports the outcome on out.
// Export resources are written to Args.OutDir as export-<n>.zip in page order.
func (a *Application) Run(ctx context.Context, out io.Writer) error {
	script, err := os.ReadFile(a.Args.ScriptFile())
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	var opts []impex.Option
	if a.Args.Validation != "" {
		v, err := impex.ParseValidation(a.Args.Validation)
		if err != nil {
			return err
		}
		opts = append(opts, impex.WithValidation(v))
	}

	if !a.Args.IsExport() {
		res, err := a.client.Import(ctx, impex.NewImport(string(script), opts...))
		if err != nil {
			return err
		}
		if res.HasError() {
			fmt.Fprintln(out, res.Error)
			return ErrImpexFailed
		}
		fmt.Fprintln(out, "import finished")
		return nil
	}

	res, err := a.client.Export(ctx, impex.NewExport(string(script), opts...))
	if err != nil {
		return err
	}
	if res.HasError() {
		fmt.Fprintln(out, res.Error)
		return ErrImpexFailed
	}

	if err := os.MkdirAll(a.Args.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, data := range res.Resources {
		path := filepath.Join(a.Args.OutDir, fmt.Sprintf("export-%d.zip", i+1))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		a.Logger.Info("wrote export resource",
			logging.Field{Key: "path", Value: path},
			logging.Field{Key: "bytes", Value: len(data)})
		fmt.Fprintln(out, path)
	}
	return nil
}

// Shutdown releases the console session.
func (a *Application) Shutdown() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Debug("application shutdown")
	return a.session.Close()
}

// ExitCode maps a Run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case impex.IsCommunicationError(err):
		return ExitCommunicationError
	default:
		return ExitFailure
	}
}
