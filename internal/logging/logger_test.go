package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAcceptsKnownLevelsAndFormats(t *testing.T) {
	logger, err := New("notice", "json", false)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewDebugForcesDebugLevel(t *testing.T) {
	logger, err := New("error", "json", true)
	require.NoError(t, err)
	require.True(t, logger.Enabled(nil, -4)) // slog.LevelDebug
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose", "json", false)
	require.Error(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("notice", "binary", false)
	require.Error(t, err)
}

func TestWithActivationAddsCorrelationID(t *testing.T) {
	logger, err := New("notice", "json", false)
	require.NoError(t, err)
	require.NotNil(t, WithActivation(logger, "abc-123"))
}
