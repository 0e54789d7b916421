package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("prod", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New("", "debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Errors(t *testing.T) {
	_, err := New("verbose", "info")
	assert.Error(t, err)

	_, err = New("dev", "loud")
	assert.Error(t, err)
}

func TestOr(t *testing.T) {
	assert.NotNil(t, Or(nil))
}
