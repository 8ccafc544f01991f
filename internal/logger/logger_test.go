package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-storefront/internal/config"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(config.Log{Level: "loud", Format: "json"})
	require.Error(t, err)
}

func TestNewRejectsInvalidFormat(t *testing.T) {
	_, err := New(config.Log{Level: "info", Format: "xml"})
	require.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.log")

	log, err := New(config.Log{Level: "debug", Format: "console", File: path})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1))

	log.Info("hello")
	require.NoError(t, log.Sync())
	assert.FileExists(t, path)
}
