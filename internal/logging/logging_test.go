package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json", ""} {
		logger, err := New("warn", format)
		require.NoError(t, err, format)
		assert.False(t, logger.Core().Enabled(zap.InfoLevel))
		assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	}

	logger, err := New("debug", "json")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", "console")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
