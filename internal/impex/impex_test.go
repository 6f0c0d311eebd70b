package impex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewImport_Defaults(t *testing.T) {
	i := NewImport("INSERT_UPDATE Title;code[unique=true]\n;mr")
	form := i.Form()

	assert.Equal(t, "INSERT_UPDATE Title;code[unique=true]\n;mr", form.Get("scriptContent"))
	assert.Equal(t, "IMPORT_STRICT", form.Get("validationEnum"))
	assert.Equal(t, "1", form.Get("maxThreads"))
	assert.Equal(t, "UTF-8", form.Get("encoding"))
	assert.Equal(t, "on", form.Get("_legacyMode"))
	assert.Empty(t, form.Get("legacyMode"))
	assert.Empty(t, form.Get("enableCodeExecution"))
}

func TestNewExport_Defaults(t *testing.T) {
	e := NewExport("$targetFile=products.csv")
	assert.Equal(t, ExportOnly, e.Validation())
	assert.Equal(t, "EXPORT_ONLY", e.Form().Get("validationEnum"))
}

func TestImpex_Options(t *testing.T) {
	i := NewImport("x",
		WithValidation(ImportRelaxed),
		WithMaxThreads(4),
		WithEncoding("ISO-8859-1"),
		WithLegacyMode(true),
		WithCodeExecution(true),
		WithDistributedMode(true),
		WithSLD(true),
	)
	form := i.Form()

	assert.Equal(t, "IMPORT_RELAXED", form.Get("validationEnum"))
	assert.Equal(t, "4", form.Get("maxThreads"))
	assert.Equal(t, "ISO-8859-1", form.Get("encoding"))
	for _, name := range []string{"legacyMode", "enableCodeExecution", "distributedMode", "sldEnabled"} {
		assert.Equal(t, "true", form.Get(name), name)
		assert.Equal(t, "on", form.Get("_"+name), name)
	}
}

func TestImpex_InvalidOptionValuesIgnored(t *testing.T) {
	i := NewImport("x", WithMaxThreads(0), WithEncoding(""))
	assert.Equal(t, 1, i.MaxThreads())
	assert.Equal(t, DefaultEncoding, i.Encoding())
}

func TestParseValidation(t *testing.T) {
	v, err := ParseValidation(" import_relaxed ")
	assert.NoError(t, err)
	assert.Equal(t, ImportRelaxed, v)

	v, err = ParseValidation("EXPORT_REIMPORT_STRICT")
	assert.NoError(t, err)
	assert.Equal(t, ExportReimportStrict, v)

	_, err = ParseValidation("LOOSE")
	assert.Error(t, err)
}
