package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsBaseUnchanged(t *testing.T) {
	base := Default()
	got, err := Load(base, "")
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestLoadMissingFileReturnsBaseUnchanged(t *testing.T) {
	base := Default()
	got, err := Load(base, filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestLoadOverlaysFileFieldsOntoBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprintd.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = ":9443"
cert = "/etc/fingerprintd/cert.pem"
`), 0o600))

	got, err := Load(Default(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9443", got.Addr)
	assert.Equal(t, "/etc/fingerprintd/cert.pem", got.CertFile)
	assert.Equal(t, Default().MetricsAddr, got.MetricsAddr)
}

func TestApplyFlagsOverridesConfigFile(t *testing.T) {
	cfg := Config{Addr: ":9443", CertFile: "file-cert.pem"}

	got := ApplyFlags(cfg, Flags{Addr: ":8443"})

	assert.Equal(t, ":8443", got.Addr)
	assert.Equal(t, "file-cert.pem", got.CertFile)
}
