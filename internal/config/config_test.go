package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and XDG_CONFIG_HOME at empty temp dirs so no real
// config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "prayog> ", cfg.Prompt)
	assert.Equal(t, "js", cfg.Engine)
	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, []string{"__result__", "__proto__"}, cfg.InternalNames)
}

func TestLoad_WithoutFileUsesDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "prayog> ", cfg.Prompt)
	assert.Equal(t, filepath.Join(home, ".prayog_history"), cfg.HistoryFile)
	assert.True(t, cfg.Color)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, `
prompt = ">>> "
engine = "tengo"
timeout = 5
color = false
history_file = "~/hist"
internal_names = ["secret"]
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, ">>> ", cfg.Prompt)
	assert.Equal(t, "tengo", cfg.Engine)
	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.False(t, cfg.Color)
	assert.Equal(t, []string{"secret"}, cfg.InternalNames)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "hist"), cfg.HistoryFile)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_SearchesXDGThenHome(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".prayog.toml"), `prompt = "home> "`)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "home> ", cfg.Prompt)

	writeFile(t, filepath.Join(home, "xdg", "prayog", "config.toml"), `prompt = "xdg> "`)
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "xdg> ", cfg.Prompt)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `engine = "js"`)
	t.Setenv("PRAYOG_ENGINE", "tengo")
	t.Setenv("PRAYOG_TIMEOUT", "7")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "tengo", cfg.Engine)
	assert.Equal(t, 7, cfg.Timeout)
}

func TestLoad_ExplicitSetWins(t *testing.T) {
	isolate(t)
	t.Setenv("PRAYOG_PROMPT", "env> ")

	v := viper.New()
	v.Set(KeyPrompt, "flag> ")
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "flag> ", cfg.Prompt)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Engine = "lua"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownEngine)

	cfg = Default()
	cfg.Timeout = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTimeout)

	cfg = Default()
	cfg.Prompt = ""
	assert.ErrorIs(t, cfg.Validate(), ErrEmptyPrompt)

	cfg = Default()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `engine = "lua"`)

	_, err := Load(viper.New(), path)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestLevel(t *testing.T) {
	cfg := Default()
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	cfg.LogLevel = "debug"
	level, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestPolicy(t *testing.T) {
	cfg := Default()
	p := cfg.Policy()
	assert.Equal(t, cfg.InternalNames, p.Internal)
	assert.Equal(t, "_", p.PrivatePrefix)

	p.Internal[0] = "changed"
	assert.Equal(t, "__result__", cfg.InternalNames[0])
}

func TestEncode_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Engine = "tengo"

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), "engine = ")

	var decoded Config
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, cfg, decoded)
}
