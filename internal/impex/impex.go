// Package impex drives the console's import and export pages and interprets
// the HTML they render.
package impex

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Validation is the console's validation mode for a script.
type Validation string

const (
	ImportStrict          Validation = "IMPORT_STRICT"
	ImportRelaxed         Validation = "IMPORT_RELAXED"
	ExportOnly            Validation = "EXPORT_ONLY"
	ExportReimportStrict  Validation = "EXPORT_REIMPORT_STRICT"
	ExportReimportRelaxed Validation = "EXPORT_REIMPORT_RELAXED"
)

const DefaultEncoding = "UTF-8"

// ParseValidation accepts a validation mode name in any case.
func ParseValidation(s string) (Validation, error) {
	v := Validation(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case ImportStrict, ImportRelaxed, ExportOnly, ExportReimportStrict, ExportReimportRelaxed:
		return v, nil
	}
	return "", fmt.Errorf("unknown validation mode %q", s)
}

// Impex is a script plus the submission parameters of the import/export form.
// Values are immutable once built; use the With* options to construct variants.
type Impex struct {
	scriptContent       string
	validation          Validation
	maxThreads          int
	encoding            string
	legacyMode          bool
	enableCodeExecution bool
	distributedMode     bool
	sldEnabled          bool
}

// Option customizes an Impex during construction.
type Option func(*Impex)

// NewImport returns an import request with the console's form defaults.
func NewImport(script string, opts ...Option) Impex {
	return newImpex(script, ImportStrict, opts)
}

// NewExport returns an export request with the console's form defaults.
func NewExport(script string, opts ...Option) Impex {
	return newImpex(script, ExportOnly, opts)
}

func newImpex(script string, validation Validation, opts []Option) Impex {
	i := Impex{
		scriptContent: script,
		validation:    validation,
		maxThreads:    1,
		encoding:      DefaultEncoding,
	}
	for _, opt := range opts {
		opt(&i)
	}
	return i
}

func WithValidation(v Validation) Option {
	return func(i *Impex) { i.validation = v }
}

// WithMaxThreads sets the worker count used by the console; values below 1 are ignored.
func WithMaxThreads(n int) Option {
	return func(i *Impex) {
		if n >= 1 {
			i.maxThreads = n
		}
	}
}

func WithEncoding(enc string) Option {
	return func(i *Impex) {
		if enc != "" {
			i.encoding = enc
		}
	}
}

func WithLegacyMode(on bool) Option {
	return func(i *Impex) { i.legacyMode = on }
}

func WithCodeExecution(on bool) Option {
	return func(i *Impex) { i.enableCodeExecution = on }
}

func WithDistributedMode(on bool) Option {
	return func(i *Impex) { i.distributedMode = on }
}

// WithSLD toggles service layer direct mode.
func WithSLD(on bool) Option {
	return func(i *Impex) { i.sldEnabled = on }
}

func (i Impex) ScriptContent() string { return i.scriptContent }
func (i Impex) Validation() Validation { return i.validation }
func (i Impex) MaxThreads() int        { return i.maxThreads }
func (i Impex) Encoding() string       { return i.encoding }

// Form encodes the request with the console's field names. Checkboxes carry
// the Spring "_name" marker so unchecked boxes are bound as false.
func (i Impex) Form() url.Values {
	form := url.Values{}
	form.Set("scriptContent", i.scriptContent)
	form.Set("validationEnum", string(i.validation))
	form.Set("maxThreads", strconv.Itoa(i.maxThreads))
	form.Set("encoding", i.encoding)

	checkbox(form, "legacyMode", i.legacyMode)
	checkbox(form, "enableCodeExecution", i.enableCodeExecution)
	checkbox(form, "distributedMode", i.distributedMode)
	checkbox(form, "sldEnabled", i.sldEnabled)
	return form
}

func checkbox(form url.Values, name string, on bool) {
	form.Set("_"+name, "on")
	if on {
		form.Set(name, "true")
	}
}
