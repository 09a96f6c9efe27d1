// Package theme defines the light and dark color themes shared by the
// terminal and web front ends.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Name is a theme name.
type Name string

// Available themes.
const (
	Dark  Name = "dark"
	Light Name = "light"
)

// Default is the theme used when none is configured.
const Default = Dark

// Parse returns the theme named s, ignoring case and surrounding space. An
// empty string is the default theme.
func Parse(s string) (Name, error) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Default, nil
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want %q or %q)", s, Dark, Light)
	}
}

// Toggle returns the other theme.
func (n Name) Toggle() Name {
	if n == Light {
		return Dark
	}
	return Light
}

// Label is the text for the toggle button, naming the theme it switches to.
func (n Name) Label() string {
	if n == Light {
		return "Dark"
	}
	return "Light"
}

// Palette is the set of colors for one theme. Colors are hex strings so the
// web front end can use them in CSS as well.
type Palette struct {
	// Background is the page or screen background.
	Background lipgloss.Color
	// Surface is the calculator body.
	Surface lipgloss.Color
	// Display is the background of the expression display.
	Display lipgloss.Color
	// Text is the primary text color.
	Text lipgloss.Color
	// Muted is used for the result line and hints.
	Muted lipgloss.Color
	// Button and ButtonText color digit and function keys.
	Button     lipgloss.Color
	ButtonText lipgloss.Color
	// Operator colors operator keys.
	Operator lipgloss.Color
	// Clear colors the C key.
	Clear lipgloss.Color
	// Delete colors the DEL key.
	Delete lipgloss.Color
	// Equals colors the = key.
	Equals lipgloss.Color
	// Focus marks the focused key in the terminal.
	Focus lipgloss.Color
}

var palettes = map[Name]Palette{
	Dark: {
		Background: lipgloss.Color("#111827"),
		Surface:    lipgloss.Color("#1f2937"),
		Display:    lipgloss.Color("#111827"),
		Text:       lipgloss.Color("#f9fafb"),
		Muted:      lipgloss.Color("#9ca3af"),
		Button:     lipgloss.Color("#374151"),
		ButtonText: lipgloss.Color("#f9fafb"),
		Operator:   lipgloss.Color("#f97316"),
		Clear:      lipgloss.Color("#ef4444"),
		Delete:     lipgloss.Color("#ca8a04"),
		Equals:     lipgloss.Color("#4f46e5"),
		Focus:      lipgloss.Color("#fbbf24"),
	},
	Light: {
		Background: lipgloss.Color("#f3f4f6"),
		Surface:    lipgloss.Color("#ffffff"),
		Display:    lipgloss.Color("#f9fafb"),
		Text:       lipgloss.Color("#111827"),
		Muted:      lipgloss.Color("#6b7280"),
		Button:     lipgloss.Color("#e5e7eb"),
		ButtonText: lipgloss.Color("#111827"),
		Operator:   lipgloss.Color("#fb923c"),
		Clear:      lipgloss.Color("#f87171"),
		Delete:     lipgloss.Color("#eab308"),
		Equals:     lipgloss.Color("#6366f1"),
		Focus:      lipgloss.Color("#2563eb"),
	},
}

// Palette returns the colors for the theme. Unknown names get the default
// theme's palette.
func (n Name) Palette() Palette {
	if p, ok := palettes[n]; ok {
		return p
	}
	return palettes[Default]
}
