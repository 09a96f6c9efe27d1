// Package keypad maps calculator buttons and keyboard keys to session
// operations. Both front ends drive their sessions through it so that a
// button means the same thing everywhere.
package keypad

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/scicalc/session"
)

// Action is the session operation a key performs.
type Action int

const (
	// None means the key is not bound.
	None Action = iota
	// Append appends the key's text.
	Append
	// Function appends a function or postfix operator.
	Function
	// Backspace deletes the last character.
	Backspace
	// Clear empties the session.
	Clear
	// Evaluate evaluates the buffer.
	Evaluate
	// Answer appends the last answer.
	Answer
	// ToggleTheme switches between light and dark. The session is not
	// involved; front ends apply it themselves.
	ToggleTheme
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case Append:
		return "append"
	case Function:
		return "function"
	case Backspace:
		return "backspace"
	case Clear:
		return "clear"
	case Evaluate:
		return "evaluate"
	case Answer:
		return "answer"
	case ToggleTheme:
		return "theme"
	default:
		return "Action(" + strconv.Itoa(int(a)) + ")"
	}
}

// Control labels.
const (
	LabelClear  = "C"
	LabelDelete = "DEL"
	LabelEquals = "="
	LabelAns    = "Ans"
	LabelTheme  = "Theme"
)

// Layout is the button grid, top to bottom. The theme toggle is not part of
// the grid; front ends place LabelTheme themselves.
var Layout = [][]string{
	{"sin", "cos", "tan", "ln", "log"},
	{"7", "8", "9", "(", ")"},
	{"4", "5", "6", "×", "÷"},
	{"1", "2", "3", "+", "-"},
	{"0", ".", "^", "π", "e"},
	{"!", "√", LabelAns, LabelDelete, LabelClear},
	{LabelEquals},
}

// Rows returns a copy of Layout.
func Rows() [][]string {
	r := make([][]string, len(Layout))
	for i, row := range Layout {
		r[i] = append([]string(nil), row...)
	}
	return r
}

var labels = map[string]Action{
	"sin": Function,
	"cos": Function,
	"tan": Function,
	"ln":  Function,
	"log": Function,
	"√":   Function,
	"!":   Function,

	"0": Append,
	"1": Append,
	"2": Append,
	"3": Append,
	"4": Append,
	"5": Append,
	"6": Append,
	"7": Append,
	"8": Append,
	"9": Append,
	".": Append,
	"(": Append,
	")": Append,
	"+": Append,
	"-": Append,
	"×": Append,
	"÷": Append,
	"^": Append,
	"π": Append,
	"e": Append,

	LabelAns:    Answer,
	LabelDelete: Backspace,
	LabelClear:  Clear,
	LabelEquals: Evaluate,
	LabelTheme:  ToggleTheme,
}

// Lookup returns the action for a button label.
func Lookup(label string) (Action, bool) {
	a, ok := labels[label]
	return a, ok
}

// Press performs the button labeled label on s. The result is meaningful
// only when the action is Evaluate. Unknown labels do nothing.
func Press(s *session.Session, label string) (Action, session.Result) {
	a := labels[label]
	switch a {
	case Append:
		s.Append(label)
	case Function:
		s.PressFunction(label)
	case Backspace:
		s.Backspace()
	case Clear:
		s.Clear()
	case Evaluate:
		return a, s.Evaluate()
	case Answer:
		s.Ans()
	}
	return a, session.Result{}
}

// keys maps keyboard keys to button labels. Digits, + - * / . ( ) append,
// Enter evaluates, and Backspace deletes. The rest are shortcuts for keys
// that have no character of their own.
var keys = map[string]string{
	"*": "×",
	"/": "÷",

	"enter":     LabelEquals,
	"=":         LabelEquals,
	"backspace": LabelDelete,
	"esc":       LabelClear,
	"escape":    LabelClear,
	"delete":    LabelClear,

	"s": "sin",
	"c": "cos",
	"t": "tan",
	"l": "ln",
	"g": "log",
	"r": "√",
	"p": "π",
	"a": LabelAns,
}

// Label returns the button label for a keyboard key. Key names like Enter
// are matched without regard to case. The second result is false when the
// key has no button.
func Label(key string) (string, bool) {
	if l, ok := keys[key]; ok {
		return l, true
	}
	if _, ok := labels[key]; ok && key != LabelTheme {
		return key, true
	}
	if utf8.RuneCountInString(key) > 1 {
		if l, ok := keys[strings.ToLower(key)]; ok {
			return l, true
		}
	}
	return "", false
}

// Key performs the button for a keyboard key on s.
func Key(s *session.Session, key string) (Action, session.Result) {
	l, ok := Label(key)
	if !ok {
		return None, session.Result{}
	}
	return Press(s, l)
}
