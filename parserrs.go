package scicalc

import (
	"errors"
	"strconv"
	"strings"
)

// InputError is implemented by every error that comes from malformed input
// rather than from evaluation.
type InputError interface {
	error
	// Pos is the column, counted in runes from 1, of the token at fault.
	Pos() int
}

// ErrorPos returns the column of the first InputError in err's chain, or 0
// if there is none.
func ErrorPos(err error) int {
	var ie InputError
	if !errors.As(err, &ie) {
		return 0
	}
	return ie.Pos()
}

// OperatorError reports an operator where none can go, such as * at the start
// of a term or ! with nothing before it.
type OperatorError struct {
	Col      int
	Operator string
	// Unary is set when the operator was found where an operand belongs.
	Unary bool
}

func (err *OperatorError) Error() string {
	op := strconv.Quote(err.Operator)
	switch {
	case strings.Contains(Postfix, err.Operator):
		return located("operator "+op+" has no operand", err.Col)
	case err.Unary:
		return located("operator "+op+" cannot begin a term", err.Col)
	}
	return located("operator "+op+" cannot join terms", err.Col)
}

func (err *OperatorError) Pos() int { return err.Col }

// BracketError reports a bracket without its partner. Exactly one of Left and
// Right is empty when the partner is missing altogether; otherwise the two
// are of different kinds.
type BracketError struct {
	Col   int
	Left  string
	Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return located("bracket "+err.Right+" closes nothing", err.Col)
	case err.Right == "":
		return located("bracket "+err.Left+" is never closed", err.Col)
	}
	return located("bracket "+err.Left+" cannot be closed by "+err.Right, err.Col)
}

func (err *BracketError) Pos() int { return err.Col }

// SeparatorError reports a comma or semicolon outside an argument list, or
// one with no argument before it.
type SeparatorError struct {
	Col int
	Sep string
}

func (err *SeparatorError) Error() string {
	return located("separator "+strconv.Quote(err.Sep)+" is out of place", err.Col)
}

func (err *SeparatorError) Pos() int { return err.Col }

// CallError reports a function given a number of arguments it does not take,
// like sqrt at the end of the input.
type CallError struct {
	Col  int
	Func string
	// Len is the argument count the input implied.
	Len int
}

func (err *CallError) Error() string {
	n := strconv.Itoa(err.Len) + " arguments"
	if err.Len == 1 {
		n = "1 argument"
	}
	return located(err.Func+" does not take "+n, err.Col)
}

func (err *CallError) Pos() int { return err.Col }

// EmptyExpressionError reports a missing operand or bracketed expression.
// End is the token that came where the expression should have been, or empty
// at the end of the input.
type EmptyExpressionError struct {
	Col int
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return located("empty expression before "+strconv.Quote(err.End), err.Col)
	case err.Col <= 1:
		return located("empty expression", err.Col)
	}
	return located("empty expression at end of input", err.Col)
}

func (err *EmptyExpressionError) Pos() int { return err.Col }

// located appends a column to an error message.
func located(msg string, col int) string {
	return msg + " at column " + strconv.Itoa(col)
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
)
