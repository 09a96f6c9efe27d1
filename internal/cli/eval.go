package cli

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/scicalc"
	"github.com/zephyrtronium/scicalc/session"
)

type evalOptions struct {
	in     string
	verb   string
	given  []string
	lines  bool
	echo   bool
	plain  bool
	prec   uint
	digits int
}

func newEvalCommand(a *app) *cobra.Command {
	var o evalOptions
	cmd := &cobra.Command{
		Use:   "eval [expression...]",
		Short: "Evaluate expressions",
		Long: `Evaluate each argument as an expression, or read expressions from a file or
standard input. Each result is bound to "ans" for the expressions after it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("prec") {
				o.prec = a.cfg.Calc.Precision
			}
			if !cmd.Flags().Changed("digits") {
				o.digits = a.cfg.Calc.Digits
			}
			return runEval(cmd, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.in, "in", "", "input file, or - for stdin (default stdin if no args given)")
	f.StringVar(&o.verb, "fmt", "", "result formatting verb, e.g. %g (default is --digits significant digits)")
	f.StringArrayVar(&o.given, "given", nil, "name=value variable definition (any number of times)")
	f.UintVarP(&o.prec, "prec", "p", 64, "precision of calculations in bits")
	f.IntVar(&o.digits, "digits", scicalc.DefaultDigits, "significant digits in results")
	f.BoolVarP(&o.lines, "lines", "n", false, "parse separate input lines as separate expressions")
	f.BoolVar(&o.echo, "echo", false, "print parse trees")
	f.BoolVar(&o.plain, "no-funcs", false, "parse built-in function and constant names as variables")
	return cmd
}

func runEval(cmd *cobra.Command, o evalOptions, args []string) error {
	if o.prec == 0 {
		return fmt.Errorf("precision must be positive")
	}
	out := cmd.OutOrStdout()

	var ins []io.RuneScanner
	in, closer, err := infile(cmd, o.in, len(args) == 0)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	if in != nil {
		ins = append(ins, in)
	}
	for _, arg := range args {
		ins = append(ins, strings.NewReader(arg))
	}

	ctx := scicalc.NewContext(scicalc.Prec(o.prec))
	var opts []scicalc.ParseOption
	if o.plain {
		opts = append(opts, scicalc.DisableDefaultFuncs())
	}
	if o.lines {
		opts = append(opts, scicalc.StopOn('\n'))
	}
	for _, d := range o.given {
		nm, vl, ok := strings.Cut(d, "=")
		if !ok {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, d)
		}
		nm = strings.TrimSpace(nm)
		r, err := scicalc.EvalString(vl, scicalc.Prec(o.prec))
		if err != nil {
			return fmt.Errorf("setting %s: %w", nm, err)
		}
		ctx.Set(nm, r)
		// A definition shadows a built-in of the same name, e.g. e=2.5.
		opts = append(opts, scicalc.ParseFunc(nm, nil))
	}
	preset := scicalc.ParsingPreset(opts...)

	var p []*scicalc.Expr
	for _, in := range ins {
		for {
			done, err := skipSpace(in)
			if err != nil {
				return err
			}
			if done {
				break
			}
			e, err := scicalc.Parse(in, preset)
			if err != nil {
				return fmt.Errorf("parsing expression %d: %w", len(p)+1, err)
			}
			p = append(p, e)
		}
	}

	for _, e := range p {
		if o.echo {
			fmt.Fprintf(out, "%v : ", e)
		}
		r := ctx.Eval(e)
		if r == nil {
			fmt.Fprintln(out, ctx.Err())
			continue
		}
		if o.verb != "" {
			fmt.Fprintf(out, o.verb+"\n", r)
		} else {
			fmt.Fprintln(out, scicalc.Format(r, o.digits))
		}
		ctx.Set(session.AnsName, new(big.Float).Copy(r))
	}
	return nil
}

// skipSpace consumes leading whitespace and reports whether in is exhausted.
func skipSpace(in io.RuneScanner) (bool, error) {
	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if !unicode.IsSpace(r) {
			return false, in.UnreadRune()
		}
	}
}

func infile(cmd *cobra.Command, name string, std bool) (io.RuneScanner, io.Closer, error) {
	switch {
	case name != "" && name != "-":
		f, err := os.Open(name)
		if err != nil {
			return nil, nil, fmt.Errorf("opening input: %w", err)
		}
		return bufio.NewReader(f), f, nil
	case name == "-", std:
		return bufio.NewReader(cmd.InOrStdin()), nil, nil
	}
	return nil, nil, nil
}
