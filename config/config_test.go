package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
entsoe:
  token: secret
influx:
  url: http://localhost:8086
  org: home
  bucket: energy
checkpoint:
  path: /var/lib/spotflux/checkpoint.json
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Entsoe.Token)
	assert.Equal(t, "10YNL----------L", cfg.Entsoe.Domain)
	assert.Equal(t, "http://localhost:8086", cfg.Influx.URL)
	assert.Equal(t, "/var/lib/spotflux/checkpoint.json", cfg.Checkpoint.Path)

	// Defaults.
	assert.Equal(t, "entso-e", cfg.Export.Source)
	assert.Equal(t, 0.21, cfg.Export.VATRate)
	assert.Equal(t, 0.0182, cfg.Export.SourcingMarkup)
	assert.Equal(t, 0.1316, cfg.Export.EnergyTax)
	assert.Equal(t, 3, cfg.Export.RetryMaxAttempts)
	assert.False(t, cfg.Publish.Enabled())
	assert.False(t, cfg.Metrics.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SPOTFLUX_ENTSOE__TOKEN", "from-env")
	t.Setenv("SPOTFLUX_INFLUX__BUCKET", "override")

	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Entsoe.Token)
	assert.Equal(t, "override", cfg.Influx.Bucket)
}

func TestLoadMissingToken(t *testing.T) {
	cfg := `
influx:
  url: http://localhost:8086
  org: home
  bucket: energy
`
	_, err := Load(writeConfig(t, "config.yaml", cfg))
	assert.Error(t, err)
}

func TestLoadMissingInflux(t *testing.T) {
	cfg := `
entsoe:
  token: secret
`
	_, err := Load(writeConfig(t, "config.yaml", cfg))
	assert.Error(t, err)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	cfg := `{
		"entsoe": {"token": "secret"},
		"influx": {"url": "http://localhost:8086", "org": "home", "bucket": "energy"}
	}`
	loaded, err := Load(writeConfig(t, "config.json", cfg))
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.Entsoe.Token)
}
