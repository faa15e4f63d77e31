package obs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerDefaultsToProductionJSON(t *testing.T) {
	logger, err := NewLogger(Options{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerDevelopmentEnablesDebug(t *testing.T) {
	logger, err := NewLogger(Options{Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerWithLogFileWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprintd.log")

	logger, err := NewLogger(Options{LogFile: path})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestConnLoggerTagsUniqueIDs(t *testing.T) {
	base, err := NewLogger(Options{})
	require.NoError(t, err)

	_, id1 := ConnLogger(base)
	_, id2 := ConnLogger(base)

	assert.NotEmpty(t, id1)
	assert.NotEmpty(t, id2)
	assert.NotEqual(t, id1, id2)
}
