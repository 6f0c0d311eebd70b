package hac_test

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlolling/jhac/internal/impex"
)

func TestImpexAgainstDemoConsole_Import(t *testing.T) {
	client := impex.New(newSession(t, startDemo(t), "admin", "nimda"))

	res, err := client.Import(context.Background(), impex.NewImport("INSERT_UPDATE Title;code[unique=true]\n;mr"))
	require.NoError(t, err)
	assert.False(t, res.HasError())

	res, err = client.Import(context.Background(), impex.NewImport("INSERT_UPDATE Title;code\n;ERROR"))
	require.NoError(t, err)
	assert.Equal(t, "ImpExException: line 2: ;ERROR", res.Error)

	_, err = client.Import(context.Background(), impex.NewImport(""))
	require.Error(t, err)
	assert.True(t, impex.IsCommunicationError(err))
	assert.Equal(t, "Script content must not be empty", err.Error())
}

func TestImpexAgainstDemoConsole_Export(t *testing.T) {
	client := impex.New(newSession(t, startDemo(t), "admin", "nimda"))
	script := "INSERT_UPDATE Product;code[unique=true]"

	res, err := client.Export(context.Background(), impex.NewExport(script))
	require.NoError(t, err)
	require.False(t, res.HasError())
	require.Len(t, res.Resources, 1)

	zr, err := zip.NewReader(bytes.NewReader(res.Resources[0]), int64(len(res.Resources[0])))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "importscript.impex", zr.File[0].Name)

	res, err = client.Export(context.Background(), impex.NewExport("ERROR"))
	require.NoError(t, err)
	assert.Equal(t, "ImpExException: line 1: ERROR", res.Error)
	assert.Nil(t, res.Resources)
}
