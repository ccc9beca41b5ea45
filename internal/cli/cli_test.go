package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/visualizer/internal/lib"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeElements(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "elements.json")
	doc := `[
		{"data": {"id": "n1", "label": "Hello"}},
		{"data": {"id": "c1", "canonicalID": "a-b"}, "classes": "Canonical"},
		{"data": {"id": "e1", "source": "n1", "target": "c1"}}
	]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "visualizer "+lib.Version+"\n", out)
}

func TestRenderJSON(t *testing.T) {
	dir := t.TempDir()
	source := writeElements(t, dir)

	_, err := run(t, "render", "-s", source, "-e", "json", "-o", filepath.Join(dir, "out"))
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)

	var got struct {
		Container string           `json:"container"`
		Elements  []map[string]any `json:"elements"`
		Layout    map[string]any   `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "app", got.Container)
	assert.Len(t, got.Elements, 3)
	assert.Equal(t, "cola", got.Layout["name"])
}

func TestRenderCytoscape(t *testing.T) {
	dir := t.TempDir()
	source := writeElements(t, dir)

	_, err := run(t, "render", "-s", source, "-o", filepath.Join(dir, "page"))
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "page.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `<div id="app"></div>`)
	assert.Contains(t, string(b), "cytoscape.use(cytoscapeCola);")
}

func TestRenderMissingContainer(t *testing.T) {
	dir := t.TempDir()
	source := writeElements(t, dir)
	config := filepath.Join(dir, "visualizer.toml")
	require.NoError(t, os.WriteFile(config, []byte("[page]\ncontainer = \"graph\"\n"), 0o644))

	_, err := run(t, "-c", config, "render", "-s", source, "-o", filepath.Join(dir, "page"))
	assert.ErrorContains(t, err, "container not found")
}

func TestRenderLoadError(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "render", "-s", filepath.Join(dir, "missing.json"), "-e", "json", "-o", filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderUnknownEngine(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "render", "-s", writeElements(t, dir), "-e", "vis")
	assert.Error(t, err)
}

func TestBuildPages(t *testing.T) {
	dir := t.TempDir()

	c := New(io.Discard)
	require.NoError(t, c.setup())
	c.cfg.Source.URL = writeElements(t, dir)
	c.cfg.Server.FetchElements = true

	list, err := c.load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	pages, err := c.buildPages(list)
	require.NoError(t, err)
	require.Contains(t, pages, "/")
	assert.Contains(t, pages, "/config.json")
	assert.Contains(t, pages, "/echarts")

	var buf bytes.Buffer
	require.NoError(t, pages["/"].Render(&buf))
	assert.Contains(t, buf.String(), `fetch("/elements.json")`)

	// Computed styles are resolved into the served elements.
	assert.Equal(t, "a- b", pages["/"].Options().Elements[1].Data["__style_1_label"])
}

func TestSetupLogsLayoutExtensions(t *testing.T) {
	var stderr bytes.Buffer
	c := New(&stderr)
	c.verbose = true
	require.NoError(t, c.setup())

	assert.Contains(t, stderr.String(), "Layout extension available")
	assert.Contains(t, stderr.String(), "cola")
}
