// Package cli implements the scicalc command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/scicalc/internal/config"
	"github.com/zephyrtronium/scicalc/internal/logger"
	"github.com/zephyrtronium/scicalc/internal/theme"
	"github.com/zephyrtronium/scicalc/session"
)

// app is the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCommand creates the scicalc command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "scicalc",
		Short: "Scientific calculator",
		Long: `scicalc evaluates arithmetic expressions with factorials, roots,
logarithms, and trigonometry at arbitrary precision. Use it from the command
line, as a terminal keypad, or in a browser.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default is $HOME/.config/scicalc/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, or error (overrides config)")

	root.AddCommand(
		newEvalCommand(a),
		newTUICommand(a),
		newServeCommand(a),
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if errs := cfg.Validate(); len(errs) > 0 {
			return config.ValidationErrors(errs)
		}
	}
	a.cfg = cfg
	return nil
}

// logger builds the logger for a command. console may be nil to log only to
// the configured file.
func (a *app) logger(console io.Writer) (*logger.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:  a.cfg.Logging.Level,
		File:   a.cfg.Logging.File,
		Pretty: a.cfg.Logging.Pretty,
	}, console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return l, nil
}

// sessionFactory returns a constructor for sessions configured by cfg.
func sessionFactory(cfg *config.Config, l *logger.Logger) func() *session.Session {
	log := l.Component("session")
	return func() *session.Session {
		return session.New(
			session.WithPrecision(cfg.Calc.Precision),
			session.WithDigits(cfg.Calc.Digits),
			session.WithChain(cfg.Calc.Chain),
			session.WithLogger(log),
		)
	}
}

// themeOf returns the configured theme. The config is validated, so errors
// only come from configs built by hand.
func themeOf(cfg *config.Config) theme.Name {
	t, err := theme.Parse(cfg.UI.Theme)
	if err != nil {
		return theme.Default
	}
	return t
}

// configFile returns the config file in use, or "" if there is none.
func (a *app) configFile() string {
	path := a.configPath
	if path == "" {
		path = config.File()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return path
}
