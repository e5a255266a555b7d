package lwconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/niki4/lwm2m-server/lwconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := lwconfig.Parse([]byte(`listen_address: ":5683"`))
	require.NoError(t, err)
	assert.Equal(t, "udp4", cfg.AddressFamily)
	assert.Equal(t, lwconfig.DefaultGraceMultiplier, cfg.GraceMultiplier)
}

func TestParseOverridesDefaults(t *testing.T) {
	yamlDoc := `
listen_address: ":5684"
address_family: udp6
threaded: true
grace_multiplier: 3
discovery:
  enabled: true
  server_name: test-server
log:
  level: debug
  file_path: /var/log/lwm2m.cbor
`
	cfg, err := lwconfig.Parse([]byte(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, ":5684", cfg.ListenAddress)
	assert.Equal(t, "udp6", cfg.AddressFamily)
	assert.True(t, cfg.Threaded)
	assert.Equal(t, 3, cfg.GraceMultiplier)
	assert.True(t, cfg.Discovery.Enabled)
	assert.Equal(t, "test-server", cfg.Discovery.ServerName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/lwm2m.cbor", cfg.Log.FilePath)
}

func TestParseInvalidAddressFamilyFails(t *testing.T) {
	_, err := lwconfig.Parse([]byte(`address_family: udp5`))
	assert.Error(t, err)
}

func TestParseDiscoveryEnabledWithoutNameFails(t *testing.T) {
	_, err := lwconfig.Parse([]byte(`
discovery:
  enabled: true
`))
	assert.Error(t, err)
}

func TestParseInvalidYAMLFails(t *testing.T) {
	_, err := lwconfig.Parse([]byte("not: valid: yaml: ["))
	assert.Error(t, err)
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listen_address: ":5683"`), 0o644))

	cfg, err := lwconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":5683", cfg.ListenAddress)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := lwconfig.Load("/nonexistent/path/server.yaml")
	require.Error(t, err)
	assert.IsType(t, &lwconfig.Error{}, err)
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, lwconfig.Default().Validate())
}
