package ipynb

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/store"
)

func init() {
	color.NoColor = true
}

const sample = `{
 "cells": [
  {"cell_type": "markdown", "id": "intro", "metadata": {}, "source": "# Title"},
  {"cell_type": "code", "id": "c1", "metadata": {}, "source": "x = 1", "outputs": [], "execution_count": null}
 ],
 "metadata": {"language_info": {"name": "python"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`

func TestImportThenExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := store.Load(&store.FileConfig{Path: filepath.Join(dir, "store")}, nil)
	require.NoError(t, err)
	svc := &app.Service{Persistence: p}

	src := filepath.Join(dir, "Report.ipynb")
	require.NoError(t, os.WriteFile(src, []byte(sample), 0o644))

	var buf bytes.Buffer
	require.NoError(t, (&Import{Path: src, Service: svc, Out: &buf}).Do(ctx))
	require.Contains(t, buf.String(), "as Report")
	require.Equal(t, []string{"Report"}, p.Notebooks(ctx))

	dst := filepath.Join(dir, "out.ipynb")
	require.NoError(t, (&Export{Name: "Report", Path: dst, Service: svc}).Do(ctx))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Contains(t, string(data), `"x = 1"`)

	buf.Reset()
	require.NoError(t, (&Export{Name: "Report", Service: svc, Out: &buf}).Do(ctx))
	require.True(t, strings.HasSuffix(buf.String(), "\n"))
	require.Contains(t, buf.String(), `"# Title"`)
}

func TestImportWithName(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := store.Load(&store.FileConfig{Path: filepath.Join(dir, "store")}, nil)
	require.NoError(t, err)

	src := filepath.Join(dir, "Untitled.ipynb")
	require.NoError(t, os.WriteFile(src, []byte(sample), 0o644))

	imp := Import{Path: src, Name: "scratch", Service: &app.Service{Persistence: p}, Out: &bytes.Buffer{}}
	require.NoError(t, imp.Do(ctx))
	require.Equal(t, []string{"scratch"}, p.Notebooks(ctx))
}
