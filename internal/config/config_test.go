// =================================
// File: internal/config/config_test.go
// =================================
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "program_id: 23YiQzmDxCYcX8Vu9Fkbov2NoFfUJCjNhKTH2GFfRDyM\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRetryMaxElapsedMs, cfg.RetryMaxElapsedMs)
	assert.Equal(t, DefaultEventBufferSize, cfg.EventBufferSize)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)

	pk, err := cfg.Program()
	require.NoError(t, err)
	assert.Equal(t, cfg.ProgramID, pk.String())
}

func TestLoadConfigMissingProgram(t *testing.T) {
	path := writeConfig(t, "ledger_path: /tmp/ledger\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "program_id")
}

func TestLoadConfigInvalidProgram(t *testing.T) {
	path := writeConfig(t, "program_id: not-base58!!\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "program_id")
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	path := writeConfig(t, `
program_id: 23YiQzmDxCYcX8Vu9Fkbov2NoFfUJCjNhKTH2GFfRDyM
retry_max_elapsed_ms: -1
`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "retry_max_elapsed_ms")
}
