package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.Server.BaseURL)
	assert.Equal(t, 30, cfg.Chat.PageSize)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitechat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: https://chat.example.com/api/v1
chat:
  page_size: 50
metrics:
  addr: 127.0.0.1:9090
data_dir: /tmp/bitechat
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com/api/v1", cfg.Server.BaseURL)
	assert.Equal(t, 50, cfg.Chat.PageSize)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)
	assert.Equal(t, "/tmp/bitechat", cfg.DataDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BITECHAT_SERVER_BASE_URL", "http://10.0.0.5/api/v1")
	t.Setenv("BITECHAT_METRICS_ADDR", "127.0.0.1:9191")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5/api/v1", cfg.Server.BaseURL)
	assert.Equal(t, "127.0.0.1:9191", cfg.Metrics.Addr)
}
