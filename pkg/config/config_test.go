package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useMemFs swaps AppFs for an in-memory fs for the duration of a test.
func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := AppFs
	mem := afero.NewMemMapFs()
	AppFs = mem
	t.Cleanup(func() { AppFs = prev })
	return mem
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	fs := useMemFs(t)
	path := "/home/u/.config/gopostfix/config.toml"

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.True(t, exists)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, reloaded.Server)
	assert.Equal(t, cfg.LSP, reloaded.LSP)
}

func TestLoadConfig(t *testing.T) {
	fs := useMemFs(t)
	path := "/cfg/config.toml"
	body := `
[server]
languages = ["go", "gotmpl"]
max_line_length = 120

[postfix]
disabled = ["errors"]

[[postfix_template]]
label = "log"
body = "log.Println({{expr}})"

[[snippet]]
label = "test"
detail = "test func"
body = "func Test$1(t *testing.T) {\n\t$0\n}"
`
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "gotmpl"}, cfg.Server.Languages)
	assert.Equal(t, []string{"."}, cfg.Server.TriggerCharacters, "missing keys keep defaults")
	assert.Equal(t, 120, cfg.Server.MaxLineLength)
	assert.Equal(t, []string{"errors"}, cfg.Postfix.Disabled)
	require.Len(t, cfg.Templates, 1)
	assert.Equal(t, "log", cfg.Templates[0].Label)
	require.Len(t, cfg.Snippets, 1)
	assert.Equal(t, "func Test$1(t *testing.T) {\n\t$0\n}", cfg.Snippets[0].Body)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	fs := useMemFs(t)
	path := "/cfg/config.toml"
	// max_line_length has the wrong type, so the struct decode fails
	body := `
[server]
languages = ["go"]
max_line_length = "long"

[lsp]
max_documents = 7

[cli]
show_snippet = true

[[postfix_template]]
label = "ok"
body = "{{expr}}"

[[postfix_template]]
label = "nobody"
`
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.MaxLineLength, cfg.Server.MaxLineLength)
	assert.Equal(t, 7, cfg.LSP.MaxDocuments)
	assert.Equal(t, DefaultConfig().LSP.Addr, cfg.LSP.Addr)
	assert.True(t, cfg.CLI.ShowSnippet)
	require.Len(t, cfg.Templates, 1)
	assert.Equal(t, "ok", cfg.Templates[0].Label)
}

func TestLoadConfigGarbage(t *testing.T) {
	fs := useMemFs(t)
	path := "/cfg/config.toml"
	require.NoError(t, afero.WriteFile(fs, path, []byte("[[[ not toml"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig("/cfg/missing.toml")
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	useMemFs(t)
	path := "/cfg/config.toml"
	cfg, err := InitConfig(path)
	require.NoError(t, err)

	limit := 80
	require.NoError(t, cfg.Update(path, []string{"len", "var"}, &limit))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"len", "var"}, reloaded.Postfix.Disabled)
	assert.Equal(t, 80, reloaded.Server.MaxLineLength)
}

func TestWatcherReloads(t *testing.T) {
	// fsnotify needs a real directory
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[server]\nmax_line_length = 10\n"), 0644))

	prev := AppFs
	AppFs = afero.NewOsFs()
	t.Cleanup(func() { AppFs = prev })

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("[server]\nmax_line_length = 99\n"), 0644))

	select {
	case c := <-reloaded:
		assert.Equal(t, 99, c.Server.MaxLineLength)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	require.NoError(t, <-done)
}
