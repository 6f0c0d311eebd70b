package impex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jlolling/jhac/internal/logging"
)

const (
	BasePath   = "/impex"
	ImportPath = BasePath + "/import"
	ExportPath = BasePath + "/export"
)

const (
	operationImport = "import"
	operationExport = "export"
)

// Transport is the authenticated connection to the console.
type Transport interface {
	// Execute posts form to path and returns the response body. An empty
	// contentType selects the default form encoding.
	Execute(ctx context.Context, form url.Values, path, contentType string) (string, error)

	// Fetch downloads the raw body at an absolute url.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)

	// Endpoint is the base url of the console, without a trailing slash.
	Endpoint() string
}

// ImportExport runs import and export scripts through a Transport. It keeps
// no state between calls.
type ImportExport struct {
	transport Transport
	parser    ResponseParser
	logger    logging.Logger
	metrics   *Metrics
}

// ClientOption configures an ImportExport.
type ClientOption func(*ImportExport)

func WithParser(p ResponseParser) ClientOption {
	return func(ie *ImportExport) {
		if p != nil {
			ie.parser = p
		}
	}
}

func WithLogger(l logging.Logger) ClientOption {
	return func(ie *ImportExport) {
		if l != nil {
			ie.logger = l
		}
	}
}

func WithMetrics(m *Metrics) ClientOption {
	return func(ie *ImportExport) { ie.metrics = m }
}

func New(transport Transport, opts ...ClientOption) *ImportExport {
	ie := &ImportExport{
		transport: transport,
		parser:    HTMLParser{},
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(ie)
	}
	ie.logger = ie.logger.With(logging.Field{Key: "component", Value: "impex"})
	return ie
}

// Import submits an import script. Console error markup on the returned page
// fails the call with a *CommunicationError; a failed import is reported in
// Result.Error.
func (ie *ImportExport) Import(ctx context.Context, impex Impex) (*Result, error) {
	ie.logger.Info("submitting import",
		logging.Field{Key: "validation", Value: string(impex.Validation())})

	body, err := ie.transport.Execute(ctx, impex.Form(), ImportPath, "")
	if err != nil {
		ie.metrics.observe(operationImport, OutcomeTransportError)
		return nil, fmt.Errorf("execute import: %w", err)
	}

	if messages := ie.parser.CommunicationErrors(body); len(messages) > 0 {
		ie.metrics.observe(operationImport, OutcomeCommunicationError)
		ie.logger.Error("console rejected import",
			logging.Field{Key: "errors", Value: messages})
		return nil, &CommunicationError{Messages: messages}
	}

	result := &Result{
		Error:     ie.parser.DataError(body),
		Resources: [][]byte{},
	}
	ie.finish(operationImport, result)
	return result, nil
}

// Export submits an export script and downloads every generated resource in
// page order. A data error skips the downloads; a failed download fails the
// whole call.
func (ie *ImportExport) Export(ctx context.Context, impex Impex) (*Result, error) {
	ie.logger.Info("submitting export",
		logging.Field{Key: "validation", Value: string(impex.Validation())})

	body, err := ie.transport.Execute(ctx, impex.Form(), ExportPath, "")
	if err != nil {
		ie.metrics.observe(operationExport, OutcomeTransportError)
		return nil, fmt.Errorf("execute export: %w", err)
	}

	if dataErr := ie.parser.DataError(body); dataErr != "" {
		result := &Result{Error: dataErr}
		ie.finish(operationExport, result)
		return result, nil
	}

	links := ie.parser.DownloadLinks(body)
	resources := make([][]byte, 0, len(links))
	for _, link := range links {
		resourceURL := ie.ResourceURL(link)
		ie.logger.Debug("downloading export resource", logging.Field{Key: "url", Value: resourceURL})

		data, err := ie.transport.Fetch(ctx, resourceURL)
		if err != nil {
			ie.metrics.observe(operationExport, OutcomeTransportError)
			return nil, fmt.Errorf("fetch export resource %s: %w", link, err)
		}
		ie.metrics.addDownloaded(len(data))
		resources = append(resources, data)
	}

	result := &Result{Error: "", Resources: resources}
	ie.finish(operationExport, result)
	return result, nil
}

// ResourceURL is the absolute url of an export resource link.
func (ie *ImportExport) ResourceURL(link string) string {
	return strings.TrimRight(ie.transport.Endpoint(), "/") + BasePath + "/" + link
}

func (ie *ImportExport) finish(operation string, result *Result) {
	if result.HasError() {
		ie.metrics.observe(operation, OutcomeDataError)
		ie.logger.Warn(operation+" reported an error",
			logging.Field{Key: "error", Value: result.Error})
		return
	}
	ie.metrics.observe(operation, OutcomeSuccess)
	ie.logger.Info(operation+" finished",
		logging.Field{Key: "resources", Value: len(result.Resources)})
}

// IsCommunicationError reports whether err carries console error markup.
func IsCommunicationError(err error) bool {
	var ce *CommunicationError
	return errors.As(err, &ce)
}
