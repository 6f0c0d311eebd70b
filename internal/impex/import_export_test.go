package impex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jlolling/jhac/internal/impex"
	"github.com/jlolling/jhac/internal/testutil"
)

const endpoint = "https://hac.example.com/hac"

func newTransport(pages map[string]string, resources map[string][]byte) *testutil.DummyTransport {
	return &testutil.DummyTransport{BaseURL: endpoint, Pages: pages, Resources: resources}
}

// ─── Import ────────────────────────────────────────────────────────────

func TestImport_CommunicationErrorsFailCall(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ImportPath: `<div class="error"> Invalid CSRF token </div><p class="error">Session expired</p>`,
	}, nil)

	res, err := impex.New(tr).Import(context.Background(), impex.NewImport("x"))

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "Invalid CSRF token\nSession expired", err.Error())

	var ce *impex.CommunicationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"Invalid CSRF token", "Session expired"}, ce.Messages)
	assert.True(t, impex.IsCommunicationError(err))
}

func TestImport_DataErrorReturnedInResult(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ImportPath: `<div class="impexResult"><pre>ImpExException: line 3</pre></div>`,
	}, nil)

	res, err := impex.New(tr).Import(context.Background(), impex.NewImport("x"))

	require.NoError(t, err)
	assert.Equal(t, "ImpExException: line 3", res.Error)
	assert.True(t, res.HasError())
	assert.NotNil(t, res.Resources)
	assert.Empty(t, res.Resources)
}

func TestImport_SuccessSubmitsForm(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ImportPath: `<div class="impexResult"><pre></pre></div>`,
	}, nil)

	res, err := impex.New(tr).Import(context.Background(), impex.NewImport("INSERT Foo;code\n;a"))

	require.NoError(t, err)
	assert.False(t, res.HasError())
	require.Len(t, tr.Executes, 1)
	call := tr.Executes[0]
	assert.Equal(t, "/impex/import", call.Path)
	assert.Equal(t, "", call.ContentType)
	assert.Equal(t, "INSERT Foo;code\n;a", call.Form.Get("scriptContent"))
	assert.Zero(t, tr.FetchCount())
}

func TestImport_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	tr := &testutil.DummyTransport{BaseURL: endpoint, ExecuteErr: boom}

	_, err := impex.New(tr).Import(context.Background(), impex.NewImport("x"))

	require.ErrorIs(t, err, boom)
	assert.False(t, impex.IsCommunicationError(err))
}

// ─── Export ────────────────────────────────────────────────────────────

func TestExport_DataErrorSkipsDownloads(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ExportPath: `<div class="impexResult"><pre>unknown type Foo</pre></div>
			<div id="downloadExportResultData"><a href="media/a.zip">a</a></div>`,
	}, nil)

	res, err := impex.New(tr).Export(context.Background(), impex.NewExport("x"))

	require.NoError(t, err)
	assert.Equal(t, "unknown type Foo", res.Error)
	assert.Empty(t, res.Resources)
	assert.Zero(t, tr.FetchCount())
}

func TestExport_DownloadsLinksInOrder(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ExportPath: `<div class="impexResult"><pre>  </pre></div>
			<div id="downloadExportResultData">
				<a href="media/a.zip">a</a>
				<a href="media/b.zip">b</a>
			</div>`,
	}, map[string][]byte{
		endpoint + "/impex/media/a.zip": []byte("AAA"),
		endpoint + "/impex/media/b.zip": []byte("BB"),
	})

	res, err := impex.New(tr).Export(context.Background(), impex.NewExport("x"))

	require.NoError(t, err)
	assert.Equal(t, "", res.Error)
	assert.Equal(t, [][]byte{[]byte("AAA"), []byte("BB")}, res.Resources)
	assert.Equal(t, []string{endpoint + "/impex/media/a.zip", endpoint + "/impex/media/b.zip"}, tr.Fetches)
	require.Len(t, tr.Executes, 1)
	assert.Equal(t, "/impex/export", tr.Executes[0].Path)
}

func TestExport_CommunicationMarkupDoesNotFailExport(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ExportPath: `<div class="error">ignored on export</div>`,
	}, nil)

	res, err := impex.New(tr).Export(context.Background(), impex.NewExport("x"))

	require.NoError(t, err)
	assert.False(t, res.HasError())
	assert.Empty(t, res.Resources)
}

func TestExport_FetchFailureFailsWholeCall(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ExportPath: `<div id="downloadExportResultData"><a href="a.zip">a</a><a href="b.zip">b</a><a href="c.zip">c</a></div>`,
	}, map[string][]byte{
		endpoint + "/impex/a.zip": []byte("a"),
		endpoint + "/impex/c.zip": []byte("c"),
	})
	tr.FailURLs = map[string]bool{endpoint + "/impex/b.zip": true}

	res, err := impex.New(tr).Export(context.Background(), impex.NewExport("x"))

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "b.zip")
	assert.Equal(t, 2, tr.FetchCount(), "no further downloads after a failure")
}

func TestExport_Idempotent(t *testing.T) {
	tr := newTransport(map[string]string{
		impex.ExportPath: `<div id="downloadExportResultData"><a href="media/a.zip">a</a></div>`,
	}, map[string][]byte{
		endpoint + "/impex/media/a.zip": []byte("same"),
	})
	client := impex.New(tr)

	first, err := client.Export(context.Background(), impex.NewExport("x"))
	require.NoError(t, err)
	second, err := client.Export(context.Background(), impex.NewExport("x"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExport_WithMockTransport(t *testing.T) {
	m := &testutil.MockTransport{}
	m.On("Execute", mock.Anything, mock.Anything, "/impex/export", "").
		Return(`<div id="downloadExportResultData"><a href="x.zip">x</a></div>`, nil).Once()
	m.On("Endpoint").Return("http://localhost:9001/hac/")
	m.On("Fetch", mock.Anything, "http://localhost:9001/hac/impex/x.zip").Return([]byte("zip"), nil).Once()

	res, err := impex.New(m).Export(context.Background(), impex.NewExport("x"))

	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("zip")}, res.Resources)
	m.AssertExpectations(t)
}

func TestExport_DataErrorMakesNoFetchCalls(t *testing.T) {
	m := &testutil.MockTransport{}
	m.On("Execute", mock.Anything, mock.Anything, "/impex/export", "").
		Return(`<div class="impexResult"><pre>failed</pre></div>`, nil).Once()

	res, err := impex.New(m).Export(context.Background(), impex.NewExport("x"))

	require.NoError(t, err)
	assert.Equal(t, "failed", res.Error)
	m.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

// ─── Parser seam, logging, metrics ─────────────────────────────────────

type fixedParser struct{ links []string }

func (p fixedParser) CommunicationErrors(string) []string { return nil }
func (p fixedParser) DataError(string) string             { return "" }
func (p fixedParser) DownloadLinks(string) []string       { return p.links }

func TestExport_UsesInjectedParser(t *testing.T) {
	tr := newTransport(nil, map[string][]byte{endpoint + "/impex/custom.csv": []byte("c")})

	res, err := impex.New(tr, impex.WithParser(fixedParser{links: []string{"custom.csv"}})).
		Export(context.Background(), impex.NewExport("x"))

	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c")}, res.Resources)
}

func TestImport_LogsDataErrorAsWarning(t *testing.T) {
	logger := &testutil.DummyLogger{}
	tr := newTransport(map[string]string{
		impex.ImportPath: `<div class="impexResult"><pre>bad line</pre></div>`,
	}, nil)

	_, err := impex.New(tr, impex.WithLogger(logger)).Import(context.Background(), impex.NewImport("x"))

	require.NoError(t, err)
	assert.Len(t, logger.Warns, 1)
	assert.Empty(t, logger.Errors)
}

func TestMetrics_CountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := impex.NewMetrics(reg)
	require.NoError(t, err)

	tr := newTransport(map[string]string{
		impex.ImportPath: `<div class="error">rejected</div>`,
		impex.ExportPath: `<div id="downloadExportResultData"><a href="a.zip">a</a></div>`,
	}, map[string][]byte{endpoint + "/impex/a.zip": []byte("12345")})
	client := impex.New(tr, impex.WithMetrics(metrics))

	_, err = client.Import(context.Background(), impex.NewImport("x"))
	require.Error(t, err)
	_, err = client.Export(context.Background(), impex.NewExport("x"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.Operations.WithLabelValues("import", impex.OutcomeCommunicationError)))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.Operations.WithLabelValues("export", impex.OutcomeSuccess)))
	assert.Equal(t, 5.0, promtest.ToFloat64(metrics.DownloadedBytes))
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := impex.NewMetrics(reg)
	require.NoError(t, err)
	second, err := impex.NewMetrics(reg)
	require.NoError(t, err)

	first.DownloadedBytes.Add(3)
	assert.Equal(t, 3.0, promtest.ToFloat64(second.DownloadedBytes))
}
