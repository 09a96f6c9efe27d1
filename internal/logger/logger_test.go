package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, c := range cases {
		t.Run(c.level, func(t *testing.T) {
			l, err := New(Config{Level: c.level}, &bytes.Buffer{})
			require.NoError(t, err)
			defer l.Close()
			assert.Equal(t, c.want, l.Zerolog().GetLevel())
		})
	}
}

func TestConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info"}, &buf)
	require.NoError(t, err)
	defer l.Close()

	web := l.Component("web")
	web.Info().Str("addr", ":8080").Msg("listening")
	l.Debug().Msg("hidden")
	out := buf.String()
	assert.Contains(t, out, `"component":"web"`)
	assert.Contains(t, out, `"addr":":8080"`)
	assert.Contains(t, out, `"message":"listening"`)
	assert.NotContains(t, out, "hidden")
}

func TestConsolePretty(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Pretty: true}, &buf)
	require.NoError(t, err)
	defer l.Close()

	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scicalc.log")
	l, err := New(Config{Level: "debug", File: path}, nil)
	require.NoError(t, err)

	l.Debug().Msg("to the file")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to the file")
}

func TestLevelMethods(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer l.Close()

	l.Debug().Msg("debug line")
	l.Info().Msg("info line")
	l.Warn().Msg("warn line")
	l.Error().Msg("error line")
	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"error"`)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("nothing")
	assert.NoError(t, l.Close())
}
