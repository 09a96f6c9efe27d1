package scicalc

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string
	fn   Func

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)

	nodeCall // name is Func to call, right is link to nodeArg unless niladic
	nodeArg  // name is "" or "," or ";", eval left, right is link to next arg

	nodeNeg  // evaluate left, then negate
	nodeAdd  // evaluate left, add right
	nodeSub  // evaluate left, sub right
	nodeMul  // evaluate left, mul right
	nodeDiv  // evaluate left, div by right
	nodePow  // evaluate left, exp by right
	nodeNop  // evaluate left
	nodeFact // evaluate left, then factorial
)

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeNum:
		return "Num"
	case nodeName:
		return "Name"
	case nodeCall:
		return "Call"
	case nodeArg:
		return "Arg"
	case nodeNeg:
		return "Neg"
	case nodeAdd:
		return "Add"
	case nodeSub:
		return "Sub"
	case nodeMul:
		return "Mul"
	case nodeDiv:
		return "Div"
	case nodePow:
		return "Pow"
	case nodeNop:
		return "Nop"
	case nodeFact:
		return "Fact"
	default:
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square, alt)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square, alt)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, !square, alt)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b, !square, alt)
		if n.right != nil {
			n.right.fmt(b, !square, alt)
		}
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square, alt)
	case nodeAdd:
		n.left.fmt(b, !square, alt)
		b.WriteString(" + ")
		n.right.fmt(b, !square, alt)
	case nodeSub:
		n.left.fmt(b, !square, alt)
		b.WriteString(" - ")
		n.right.fmt(b, !square, alt)
	case nodeMul:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" * ")
		} else {
			b.WriteString(" × ")
		}
		n.right.fmt(b, !square, alt)
	case nodeDiv:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" / ")
		} else {
			b.WriteString(" ÷ ")
		}
		n.right.fmt(b, !square, alt)
	case nodePow:
		n.left.fmt(b, !square, alt)
		b.WriteString(" ^ ")
		n.right.fmt(b, !square, alt)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b, !square, alt)
	case nodeFact:
		n.left.fmt(b, !square, alt)
		b.WriteByte('!')
	default:
		panic("scicalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtargs(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	if n.right == nil {
		// Niladic call.
		return
	}
	n = n.right
	if n.kind != nodeArg {
		b.WriteString("***")
		n.fmt(b, !square, alt)
		return
	}
	n.left.fmt(b, !square, alt)
	for n.right != nil {
		n = n.right
		if n.kind != nodeArg {
			b.WriteString("***")
			n.fmt(b, !square, alt)
			return
		}
		b.WriteString(", ")
		n.left.fmt(b, !square, alt)
	}
}

// asciiNames maps the calculator's symbols to their spelled-out names.
var asciiNames = map[string]string{
	"π": "pi",
	"√": "sqrt",
	"∞": "inf",
}

var normalOps = map[nodeKind]string{
	nodeAdd: " + ",
	nodeSub: " - ",
	nodeMul: " * ",
	nodeDiv: " / ",
	nodePow: " ^ ",
}

func ascii(name string) string {
	if s, ok := asciiNames[name]; ok {
		return s
	}
	return name
}

// normal writes n in plain ASCII syntax with factorials as calls and every
// compound operand parenthesized.
func (n *node) normal(b *strings.Builder) {
	switch n.kind {
	case nodeNum, nodeName:
		b.WriteString(ascii(n.name))
	case nodeCall:
		b.WriteString(ascii(n.name))
		if n.right == nil {
			return
		}
		b.WriteByte('(')
		for a := n.right; a != nil; a = a.right {
			switch a.name {
			case ",":
				b.WriteString(", ")
			case ";":
				b.WriteString("; ")
			}
			a.left.normal(b)
		}
		b.WriteByte(')')
	case nodeNeg:
		b.WriteByte('-')
		n.left.operand(b)
	case nodeNop:
		b.WriteByte('+')
		n.left.operand(b)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		n.left.operand(b)
		b.WriteString(normalOps[n.kind])
		n.right.operand(b)
	case nodeFact:
		b.WriteString("factorial(")
		n.left.normal(b)
		b.WriteByte(')')
	default:
		panic("scicalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) operand(b *strings.Builder) {
	switch n.kind {
	case nodeNum, nodeName, nodeCall, nodeFact:
		n.normal(b)
	default:
		b.WriteByte('(')
		n.normal(b)
		b.WriteByte(')')
	}
}
