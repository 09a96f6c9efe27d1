package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command line with args and stdin and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalArgs(t *testing.T) {
	out, err := run(t, "", "eval", "2+3", "3!+2", "√(16)", "2^3!")
	require.NoError(t, err)
	assert.Equal(t, "5\n8\n4\n64\n", out)
}

func TestEvalAns(t *testing.T) {
	out, err := run(t, "", "eval", "6×7", "ans+1")
	require.NoError(t, err)
	assert.Equal(t, "42\n43\n", out)
}

func TestEvalStdinLines(t *testing.T) {
	out, err := run(t, "1+1\n2^10\n\n  \n1÷4\n", "eval", "-n")
	require.NoError(t, err)
	assert.Equal(t, "2\n1024\n0.25\n", out)
}

func TestEvalInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exprs.txt")
	require.NoError(t, os.WriteFile(path, []byte("10-4-3\n7÷2\n"), 0o644))
	out, err := run(t, "", "eval", "-n", "--in", path)
	require.NoError(t, err)
	assert.Equal(t, "3\n3.5\n", out)
}

func TestEvalGiven(t *testing.T) {
	out, err := run(t, "", "eval", "--given", "x=3", "--given", "y = 2^2", "x^2+y")
	require.NoError(t, err)
	assert.Equal(t, "13\n", out)

	_, err = run(t, "", "eval", "--given", "x", "x")
	assert.Error(t, err)
}

func TestEvalGivenShadowsBuiltin(t *testing.T) {
	out, err := run(t, "", "eval", "--given", "e=2.5", "2e", "exp 0")
	require.NoError(t, err)
	assert.Equal(t, "5\n1\n", out)
}

func TestEvalNoFuncs(t *testing.T) {
	out, err := run(t, "", "eval", "--no-funcs", "--given", "sin=3", "sin 2", "pi")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "6", lines[0])
	assert.Contains(t, lines[1], `undefined variable: "pi"`)
}

func TestEvalDigits(t *testing.T) {
	out, err := run(t, "", "eval", "--digits", "5", "1/3")
	require.NoError(t, err)
	assert.Equal(t, "0.33333\n", out)

	out, err = run(t, "", "eval", "--fmt", "%.3f", "1/3")
	require.NoError(t, err)
	assert.Equal(t, "0.333\n", out)
}

func TestEvalEcho(t *testing.T) {
	out, err := run(t, "", "eval", "--echo", "1+2")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, " : 3\n"), "got %q", out)
}

func TestEvalErrors(t *testing.T) {
	out, err := run(t, "", "eval", "1/0", "2")
	require.NoError(t, err, "evaluation errors are reported per expression")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "outside domain")
	assert.Equal(t, "2", lines[1])

	_, err = run(t, "", "eval", "(2+3")
	assert.Error(t, err, "parse errors stop the command")

	_, err = run(t, "", "eval", "--prec", "0", "1")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scicalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calc:\n  digits: 3\n"), 0o644))
	out, err := run(t, "", "--config", path, "eval", "2/3")
	require.NoError(t, err)
	assert.Equal(t, "0.667\n", out)

	_, err = run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "eval", "1")
	assert.Error(t, err)
}

func TestLogLevelFlag(t *testing.T) {
	_, err := run(t, "", "--log-level", "debug", "eval", "1")
	assert.NoError(t, err)
	_, err = run(t, "", "--log-level", "chatty", "eval", "1")
	assert.Error(t, err)
}

func TestSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"eval", "tui", "serve"})
}
