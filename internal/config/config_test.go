package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	dataDir := t.TempDir()

	path := writeConfig(t, `
listen_addr: ":9090"
data_dir: `+dataDir+`
gateway_token: gw-secret
api_token: api-secret
sink_url: http://localhost:3000/inbound
default_preset: Luna
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "gw-secret", cfg.GatewayToken)
	assert.Equal(t, "api-secret", cfg.APIToken)
	assert.Equal(t, "http://localhost:3000/inbound", cfg.SinkURL)
	assert.Equal(t, "Luna", cfg.DefaultPreset)
	assert.Equal(t, filepath.Join(dataDir, "minebridge.db"), cfg.DatabasePath)
	assert.Equal(t, "admin", cfg.AdminUser)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: `+t.TempDir()+`
gateway_token: gw
api_token: api
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "Agent", cfg.DefaultPreset)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MINEBRIDGE_GATEWAY_TOKEN", "env-gw")
	t.Setenv("MINEBRIDGE_API_TOKEN", "env-api")

	path := writeConfig(t, `
data_dir: `+t.TempDir()+`
gateway_token: file-gw
api_token: file-api
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-gw", cfg.GatewayToken)
	assert.Equal(t, "env-api", cfg.APIToken)
}

func TestLoadMissingTokens(t *testing.T) {
	path := writeConfig(t, "data_dir: "+t.TempDir()+"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway_token")

	path = writeConfig(t, "data_dir: "+t.TempDir()+"\ngateway_token: gw\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_token")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
