package scicalc

import (
	"strconv"
	"unicode"
)

// ParseOption changes how Parse reads an expression.
type ParseOption func(*parsectx)

// parsectx is the state of one call to Parse.
type parsectx struct {
	scan *lexer
	// names collects the variables the expression uses.
	names map[string]bool
	// funcs maps names to the functions they call. A nil entry makes the
	// name a variable even if it is a default function.
	funcs map[string]Func
	// shared is set while funcs belongs to a preset and must be copied
	// before it is changed.
	shared bool
	// nodefaults is set once funcs holds an entry for every default function.
	nodefaults bool
	// resv holds the bracketed term that followed a niladic function, as in
	// pi(2), until it can be multiplied in.
	resv *node
	// wseof lists whitespace runes that end the expression.
	wseof string
	// ceof and seof make a comma or semicolon end the expression.
	ceof, seof bool
}

// known reports whether name is a function or constant.
func (p *parsectx) known(name string) bool {
	return p.funcs[name] != nil
}

// setfunc binds name to fn, copying a shared function table first.
func (p *parsectx) setfunc(name string, fn Func) {
	if p.funcs == nil || p.shared {
		m := make(map[string]Func, len(p.funcs)+1)
		for k, v := range p.funcs {
			m[k] = v
		}
		p.funcs, p.shared = m, false
	}
	p.funcs[name] = fn
}

// fillDefaults adds the default functions that p does not already bind.
func (p *parsectx) fillDefaults() {
	if p.nodefaults {
		return
	}
	for k, v := range globalfuncs {
		if _, ok := p.funcs[k]; !ok {
			p.setfunc(k, v)
		}
	}
	p.nodefaults = true
}

// ParseFunc makes name call fn. A nil fn makes name an ordinary variable,
// which is how to shadow a default function.
func ParseFunc(name string, fn Func) ParseOption {
	return func(p *parsectx) {
		p.setfunc(name, fn)
	}
}

// ParseFuncs applies ParseFunc to every entry of fns.
func ParseFuncs(fns map[string]Func) ParseOption {
	return func(p *parsectx) {
		for k, v := range fns {
			p.setfunc(k, v)
		}
	}
}

// DisableDefaultFuncs makes every default function and constant name an
// ordinary variable.
func DisableDefaultFuncs() ParseOption {
	return func(p *parsectx) {
		for k := range globalfuncs {
			p.setfunc(k, nil)
		}
		p.nodefaults = true
	}
}

// StopOn makes the listed runes end an expression so that Parse can read
// several from one source. Each rune must be a comma, a semicolon, or
// whitespace, otherwise StopOn panics.
//
// Whitespace never ends an expression where an operand is still needed,
// as after an operator or an open bracket. Commas and semicolons still
// separate arguments inside brackets. A later StopOn replaces an earlier one,
// and StopOn with no runes reads to the end of the input.
func StopOn(chars ...rune) ParseOption {
	var c, s bool
	var ws []rune
	for _, r := range chars {
		switch {
		case r == ',':
			c = true
		case r == ';':
			s = true
		case unicode.IsSpace(r):
			if !containsRune(ws, r) {
				ws = append(ws, r)
			}
		default:
			panic("scicalc: cannot stop on " + strconv.QuoteRune(r))
		}
	}
	w := string(ws)
	return func(p *parsectx) {
		p.ceof, p.seof, p.wseof = c, s, w
	}
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// ParsingPreset combines options into one that does its work up front, for
// parsing many expressions the same way. A preset must come before any other
// option in a call to Parse and panics otherwise. Options after it apply as
// usual without changing the preset.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var base parsectx
	for _, opt := range opts {
		opt(&base)
	}
	if base.funcs != nil {
		base.fillDefaults()
	}
	return func(p *parsectx) {
		if p.funcs != nil || p.wseof != "" || p.ceof || p.seof {
			panic("scicalc: parsing preset after other options")
		}
		p.funcs, p.shared, p.nodefaults = base.funcs, true, base.nodefaults
		p.wseof, p.ceof, p.seof = base.wseof, base.ceof, base.seof
	}
}
