package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults loads a configuration file that does not exist. It expects the defaults.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GIN_LOGGING", "")

	cfg, err := Load(afero.NewMemMapFs(), DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.Equal(t, "text", cfg.Storage.Driver)
	assert.Equal(t, "phonebook.txt", cfg.Storage.Path)
	assert.Equal(t, "en", cfg.App.Language)
	assert.Equal(t, 5, cfg.App.PageSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.GinLogging)
	assert.True(t, cfg.Server.Autosave)
	assert.Equal(t, 5, cfg.Server.GracefulShutdownTimeout)
}

// TestLoadFile loads a YAML file that overrides some values and references the environment. It
// expects file values to win over defaults and environment values to be expanded.
func TestLoadFile(t *testing.T) {
	t.Setenv("PHONEBOOK_DSN", "dirk:secret@tcp(localhost)/test?parseTime=true")
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_LOGGING", "OFF")

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "phonebook.yml", []byte(`
logger:
  level: debug
  format: json
storage:
  driver: mysql
  dsn: ${PHONEBOOK_DSN}
app:
  language: de
  page_size: 3
`), 0o644))

	cfg, err := Load(fsys, "phonebook.yml")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "mysql", cfg.Storage.Driver)
	assert.Equal(t, "dirk:secret@tcp(localhost)/test?parseTime=true", cfg.Storage.DSN)
	assert.Equal(t, "de", cfg.App.Language)
	assert.Equal(t, 3, cfg.App.PageSize)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Server.GinLogging)
	assert.Equal(t, "phonebook.txt", cfg.Storage.Path)
}

// TestLoadInvalidFile expects an error for a file that is not valid YAML.
func TestLoadInvalidFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "broken.yml", []byte("logger: [level: debug"), 0o644))
	_, err := Load(fsys, "broken.yml")
	assert.Error(t, err)
}

// TestExpandEnvWithDefaults expands set, unset and defaulted variables.
func TestExpandEnvWithDefaults(t *testing.T) {
	t.Setenv("PHONEBOOK_SET", "value")
	t.Setenv("PHONEBOOK_EMPTY", "")
	assert.Equal(t, "value", expandEnvWithDefaults("${PHONEBOOK_SET}"))
	assert.Equal(t, "value", expandEnvWithDefaults("${PHONEBOOK_SET:-other}"))
	assert.Equal(t, "other", expandEnvWithDefaults("${PHONEBOOK_EMPTY:-other}"))
	assert.Equal(t, "", expandEnvWithDefaults("${PHONEBOOK_EMPTY}"))
	assert.Equal(t, "a-value-b", expandEnvWithDefaults("a-${PHONEBOOK_SET}-b"))
	assert.Equal(t, "plain", expandEnvWithDefaults("plain"))
}
