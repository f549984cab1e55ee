package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register("summary", "Summarize: %{text}")

	got, ok := r.Get(":summary")
	require.True(t, ok)
	require.Equal(t, "Summarize: %{text}", got)

	_, ok = r.Get("nonexistent")
	require.False(t, ok)
}

func TestRegistryNameForms(t *testing.T) {
	r := NewRegistry()
	r.Register(":greeting", "Hello")
	r.Register("greeting", "Hi")
	r.Register("Greeting", "Hey")

	require.Equal(t, []string{"greeting"}, r.List())
	got, _ := r.Get("greeting")
	require.Equal(t, "Hey", got)
}

func TestRegistryOverwrite(t *testing.T) {
	r := NewRegistry()
	r.Register("summary", "Old template")
	r.Register("summary", "New template")

	got, _ := r.Get("summary")
	require.Equal(t, "New template", got)
}

func TestRegistryListAndClear(t *testing.T) {
	r := NewRegistry()
	require.Empty(t, r.List())

	r.Register("summary", "a")
	r.Register("greeting", "b")
	r.Register("translation", "c")
	require.Equal(t, []string{"greeting", "summary", "translation"}, r.List())

	r.Clear()
	require.Empty(t, r.List())
	_, ok := r.Get("summary")
	require.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yml")
	doc := "summary: \"Summarize: %{content}\"\n" +
		"greeting: Hello %{name}\n" +
		"review:\n  template: \"Review %<title>s\"\n  description: ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadFile(path))

	for name, want := range map[string]string{
		"summary":  "Summarize: %{content}",
		"greeting": "Hello %{name}",
		"review":   "Review %<title>s",
	} {
		got, ok := r.Get(name)
		require.True(t, ok, name)
		require.Equal(t, want, got)
	}
}

func TestLoadFileMissingIsNoop(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadFile("/nonexistent/file.yml"))
	require.Empty(t, r.List())
}

func TestLoadFileMalformedIsLoggedAndSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yml")
	require.NoError(t, os.WriteFile(path, []byte("not: valid: yaml:"), 0o644))

	var buf bytes.Buffer
	r := NewRegistry()
	r.SetLogger(zerolog.New(&buf))
	r.Register("keep", "kept")

	require.NoError(t, r.LoadFile(path))
	require.Equal(t, []string{"keep"}, r.List())
	require.Contains(t, buf.String(), `"level":"warn"`)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"), []byte("Summarize: %{content}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.txt"), []byte("Hello %{name}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review.yml"), []byte("template: \"Review %<title>s\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notemplate.yaml"), []byte("other: field\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subdir", "nested.txt"), []byte("nested"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadDirectory(dir))

	require.Equal(t, []string{"greeting", "review", "summary"}, r.List())
	got, _ := r.Get("review")
	require.Equal(t, "Review %<title>s", got)
	got, _ = r.Get("summary")
	require.Equal(t, "Summarize: %{content}", got)
}

func TestLoadDirectoryMissingIsNoop(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadDirectory("/nonexistent/directory"))
}

func TestLoadDispatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.txt"), []byte("Test template"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.Load(dir))
	got, ok := r.Get("template")
	require.True(t, ok)
	require.Equal(t, "Test template", got)

	file := filepath.Join(t.TempDir(), "more.yaml")
	require.NoError(t, os.WriteFile(file, []byte("extra: Extra %{x}\n"), 0o644))
	require.NoError(t, r.Load(file))
	require.Equal(t, []string{"extra", "template"}, r.List())

	require.NoError(t, r.Load(filepath.Join(dir, "missing")))
}
