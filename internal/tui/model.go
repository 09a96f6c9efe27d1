// Package tui is the terminal front end: a keypad grid driven by arrow keys
// or by typing directly.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/zephyrtronium/scicalc/internal/theme"
	"github.com/zephyrtronium/scicalc/keypad"
	"github.com/zephyrtronium/scicalc/session"
)

// Model is the bubbletea model of one calculator.
type Model struct {
	session *session.Session
	theme   theme.Name
	styles  styles
	rows    [][]string
	row     int
	col     int
	log     zerolog.Logger
}

// New creates a model around s.
func New(s *session.Session, t theme.Name, log zerolog.Logger) Model {
	rows := keypad.Rows()
	rows[len(rows)-1] = append(rows[len(rows)-1], keypad.LabelTheme)
	return Model{
		session: s,
		theme:   t,
		styles:  newStyles(t.Palette()),
		rows:    rows,
		log:     log,
	}
}

// Session returns the model's session.
func (m Model) Session() *session.Session {
	return m.session
}

// Theme returns the current theme.
func (m Model) Theme() theme.Name {
	return m.theme
}

// Focus returns the label of the focused key.
func (m Model) Focus() string {
	return m.rows[m.row][m.col]
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlQ:
		return m, tea.Quit
	case tea.KeyCtrlT:
		m.toggleTheme()
	case tea.KeyUp:
		m.move(-1, 0)
	case tea.KeyDown:
		m.move(1, 0)
	case tea.KeyLeft:
		m.move(0, -1)
	case tea.KeyRight:
		m.move(0, 1)
	case tea.KeySpace, tea.KeyTab:
		m.press(m.Focus())
	default:
		l, ok := keypad.Label(msg.String())
		if !ok {
			return m, nil
		}
		m.press(l)
	}
	return m, nil
}

func (m *Model) press(label string) {
	a, r := keypad.Press(m.session, label)
	switch a {
	case keypad.ToggleTheme:
		m.toggleTheme()
	case keypad.Evaluate:
		if !r.OK() {
			m.log.Debug().Err(r.Err).Msg("evaluate")
		}
	}
}

func (m *Model) toggleTheme() {
	m.theme = m.theme.Toggle()
	m.styles = newStyles(m.theme.Palette())
	m.log.Debug().Str("theme", string(m.theme)).Msg("theme changed")
}

// move moves focus, keeping the column as close as the new row allows.
func (m *Model) move(dr, dc int) {
	m.row = clamp(m.row+dr, 0, len(m.rows)-1)
	m.col = clamp(m.col+dc, 0, len(m.rows[m.row])-1)
}

func clamp(x, lo, hi int) int {
	return max(lo, min(x, hi))
}

// View implements tea.Model.
func (m Model) View() string {
	st := m.styles
	buf := m.session.Buffer()
	if buf == "" {
		buf = "0"
	}
	result := m.session.Display()
	if result == "" {
		result = " "
	}
	resultStyle := st.result
	if m.session.State() == session.Error {
		resultStyle = st.err
	}

	var b strings.Builder
	b.WriteString(st.title.Render("scicalc"))
	b.WriteByte('\n')
	display := lipgloss.JoinVertical(lipgloss.Right,
		st.buffer.Render(buf),
		resultStyle.Render(result),
	)
	b.WriteString(st.display.Render(display))
	b.WriteByte('\n')
	for r, row := range m.rows {
		keys := make([]string, 0, len(row))
		for c, label := range row {
			text := label
			if label == keypad.LabelTheme {
				text = m.theme.Label()
			}
			keys = append(keys, st.key(label, r == m.row && c == m.col).Render(text))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keys...))
		b.WriteByte('\n')
	}
	b.WriteString(st.help.Render("arrows move · space presses · enter = · esc C · ctrl+t theme · ctrl+c quit"))
	return st.body.Render(b.String())
}

// Run runs the model until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
