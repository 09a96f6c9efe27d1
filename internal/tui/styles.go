package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zephyrtronium/scicalc/internal/theme"
	"github.com/zephyrtronium/scicalc/keypad"
)

const keyWidth = 7

type styles struct {
	body     lipgloss.Style
	title    lipgloss.Style
	display  lipgloss.Style
	buffer   lipgloss.Style
	result   lipgloss.Style
	err      lipgloss.Style
	help     lipgloss.Style
	button   lipgloss.Style
	operator lipgloss.Style
	clear    lipgloss.Style
	delete   lipgloss.Style
	equals   lipgloss.Style
	focus    lipgloss.Color
}

func newStyles(p theme.Palette) styles {
	button := lipgloss.NewStyle().
		Width(keyWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Background(p.Button).
		Foreground(p.ButtonText)
	return styles{
		body:  lipgloss.NewStyle().Padding(1, 2).Background(p.Background).Foreground(p.Text),
		title: lipgloss.NewStyle().Bold(true).Foreground(p.Muted),
		display: lipgloss.NewStyle().
			Width(5*(keyWidth+2)).
			Padding(0, 1).
			Align(lipgloss.Right).
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.Muted).
			Background(p.Display),
		buffer:   lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		result:   lipgloss.NewStyle().Foreground(p.Muted),
		err:      lipgloss.NewStyle().Foreground(p.Clear),
		help:     lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		button:   button,
		operator: button.Background(p.Operator),
		clear:    button.Background(p.Clear),
		delete:   button.Background(p.Delete),
		equals:   button.Background(p.Equals),
		focus:    p.Focus,
	}
}

var operators = map[string]bool{"+": true, "-": true, "×": true, "÷": true, "^": true}

// key returns the style for the key labeled label.
func (s styles) key(label string, focused bool) lipgloss.Style {
	var st lipgloss.Style
	switch {
	case label == keypad.LabelClear:
		st = s.clear
	case label == keypad.LabelDelete:
		st = s.delete
	case label == keypad.LabelEquals:
		st = s.equals
	case operators[label]:
		st = s.operator
	default:
		st = s.button
	}
	if focused {
		st = st.BorderForeground(s.focus).Bold(true)
	}
	return st
}
