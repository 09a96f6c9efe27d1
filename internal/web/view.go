package web

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/zephyrtronium/scicalc/internal/theme"
	"github.com/zephyrtronium/scicalc/keypad"
	"github.com/zephyrtronium/scicalc/session"
)

// View is the state of a calculator as sent to the browser.
type View struct {
	Buffer  string `json:"buffer"`
	Result  string `json:"result"`
	Preview string `json:"preview"`
	State   string `json:"state"`
	Theme   string `json:"theme"`
}

func viewOf(s *session.Session, t theme.Name) View {
	return View{
		Buffer:  s.Buffer(),
		Result:  s.Result(),
		Preview: s.Preview(),
		State:   s.State().String(),
		Theme:   string(t),
	}
}

// Display is the text for the result line.
func (v View) Display() string {
	switch v.State {
	case session.Evaluated.String(), session.Error.String():
		return v.Result
	default:
		return v.Preview
	}
}

// apply performs key on an entry. key is a button label or a keyboard key.
func apply(s *session.Session, t *theme.Name, key string) keypad.Action {
	if key == keypad.LabelTheme {
		*t = t.Toggle()
		return keypad.ToggleTheme
	}
	a, _ := keypad.Key(s, key)
	return a
}

// button is one key of the rendered grid.
type button struct {
	Label string
	Text  string
	Class string
}

type page struct {
	View
	Display    string
	Rows       [][]button
	ThemeLabel string
	CSS        template.CSS
}

func pageOf(v View) page {
	t := theme.Name(v.Theme)
	rows := keypad.Rows()
	grid := make([][]button, len(rows))
	for i, row := range rows {
		for _, label := range row {
			grid[i] = append(grid[i], button{Label: label, Text: label, Class: classOf(label)})
		}
	}
	return page{
		View:       v,
		Display:    v.Display(),
		Rows:       grid,
		ThemeLabel: t.Label(),
		CSS:        cssVars(t.Palette()),
	}
}

func classOf(label string) string {
	switch label {
	case keypad.LabelClear:
		return "key clear"
	case keypad.LabelDelete:
		return "key delete"
	case keypad.LabelEquals:
		return "key equals"
	case "+", "-", "×", "÷", "^":
		return "key operator"
	default:
		return "key"
	}
}

// cssVars renders a palette as CSS custom properties.
func cssVars(p theme.Palette) template.CSS {
	var b strings.Builder
	b.WriteString(":root{")
	for _, v := range []struct {
		name  string
		color string
	}{
		{"background", string(p.Background)},
		{"surface", string(p.Surface)},
		{"display", string(p.Display)},
		{"text", string(p.Text)},
		{"muted", string(p.Muted)},
		{"button", string(p.Button)},
		{"button-text", string(p.ButtonText)},
		{"operator", string(p.Operator)},
		{"clear", string(p.Clear)},
		{"delete", string(p.Delete)},
		{"equals", string(p.Equals)},
		{"focus", string(p.Focus)},
	} {
		fmt.Fprintf(&b, "--%s:%s;", v.name, v.color)
	}
	b.WriteString("}")
	return template.CSS(b.String())
}
