package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.Empty(t, Default().Validate())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
calc:
  precision: 128
  digits: 20
  chain: false
ui:
  theme: light
web:
  addr: ":9090"
  session_ttl: 5m
  sweep_schedule: "*/5 * * * *"
logging:
  level: debug
  pretty: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint(128), cfg.Calc.Precision)
	assert.Equal(t, 20, cfg.Calc.Digits)
	assert.False(t, cfg.Calc.Chain)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, ":9090", cfg.Web.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Web.SessionTTL)
	assert.Equal(t, "*/5 * * * *", cfg.Web.SweepSchedule)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Pretty)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "ui:\n  theme: light\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, Default().Calc, cfg.Calc)
	assert.Equal(t, Default().Web, cfg.Web)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SCICALC_WEB_ADDR", ":7070")
	t.Setenv("SCICALC_CALC_DIGITS", "8")
	t.Setenv("SCICALC_UI_THEME", "light")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Web.Addr)
	assert.Equal(t, 8, cfg.Calc.Digits)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
calc:
  precision: 0
  digits: -1
ui:
  theme: solarized
web:
  sweep_schedule: "whenever"
logging:
  level: loud
`)
	_, err := Load(path)
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"calc.precision", "calc.digits", "ui.theme", "web.sweep_schedule", "logging.level",
	}, fields)
	assert.True(t, strings.HasPrefix(err.Error(), "5 validation errors"))
}

func TestValidationErrorsMessage(t *testing.T) {
	assert.Equal(t, "", ValidationErrors(nil).Error())
	one := ValidationErrors{{Field: "web.addr", Value: "", Message: "must not be empty"}}
	assert.Equal(t, "web.addr: must not be empty (got: )", one.Error())
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "scicalc"), Dir())
	assert.Equal(t, filepath.Join("/tmp/xdg", "scicalc", "config.yaml"), File())
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, "ui:\n  theme: dark\n")
	changes := make(chan *Config, 4)
	w, err := Watch(path, zerolog.Nop(), func(cfg *Config) { changes <- cfg })
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: light\n"), 0o644))
	select {
	case cfg := <-changes:
		assert.Equal(t, "light", cfg.UI.Theme)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the config file")
	}
}
