package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/rpmhdr/internal/models"
	"github.com/ralt/rpmhdr/rpm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rpmhdr.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, uint32(rpm.DefaultMaxTags), cfg.MaxTags)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
max_tags = 4096
max_store_size = 1048576
workers = 3
log_level = "debug"
show_values = true
max_binary_dump = 16
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		MaxTags:       4096,
		MaxStoreSize:  1 << 20,
		Workers:       3,
		LogLevel:      "debug",
		ShowValues:    true,
		MaxBinaryDump: 16,
	}, cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, level)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "workers = 2\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, uint32(rpm.DefaultMaxStoreSize), cfg.MaxStoreSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "workers = = 2"},
		{name: "wrong type", content: `workers = "many"`},
		{name: "zero workers", content: "workers = 0"},
		{name: "zero tags", content: "max_tags = 0"},
		{name: "bad level", content: `log_level = "chatty"`},
		{name: "negative dump", content: "max_binary_dump = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)

			var ierr *models.InspectError
			require.True(t, errors.As(err, &ierr))
			assert.Equal(t, models.ErrInvalidConfig, ierr.Type)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestParseOptions(t *testing.T) {
	cfg := Default()
	cfg.MaxStoreSize = 8

	b := []byte{0x8E, 0xAD, 0xE8, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 16}
	_, _, err := rpm.ParseSection(b, cfg.ParseOptions()...)
	assert.ErrorIs(t, err, rpm.ErrHeaderSize)
}
