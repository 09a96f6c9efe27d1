package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Name
	}{
		{"", Dark},
		{"dark", Dark},
		{"Light", Light},
		{"  LIGHT ", Light},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		require.NoError(t, err, "parsing %q", c.in)
		assert.Equal(t, c.want, got, "parsing %q", c.in)
	}

	_, err := Parse("solarized")
	assert.Error(t, err)
}

func TestToggle(t *testing.T) {
	assert.Equal(t, Light, Dark.Toggle())
	assert.Equal(t, Dark, Light.Toggle())
	assert.Equal(t, Light, Name("").Toggle())
	assert.Equal(t, Dark, Dark.Toggle().Toggle())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Light", Dark.Label())
	assert.Equal(t, "Dark", Light.Label())
}

func TestPalette(t *testing.T) {
	for _, n := range []Name{Dark, Light} {
		p := n.Palette()
		for _, c := range []string{
			string(p.Background), string(p.Surface), string(p.Display), string(p.Text),
			string(p.Muted), string(p.Button), string(p.ButtonText), string(p.Operator),
			string(p.Clear), string(p.Delete), string(p.Equals), string(p.Focus),
		} {
			assert.Regexp(t, `^#[0-9a-f]{6}$`, c, "theme %s", n)
		}
	}
	assert.NotEqual(t, Dark.Palette(), Light.Palette())
	assert.Equal(t, Dark.Palette(), Name("bogus").Palette())
}
