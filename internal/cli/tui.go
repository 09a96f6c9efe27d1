package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/scicalc/internal/tui"
)

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The screen belongs to the model, so logs go only to the file.
			l, err := a.logger(nil)
			if err != nil {
				return err
			}
			defer l.Close()
			m := tui.New(sessionFactory(a.cfg, l)(), themeOf(a.cfg), l.Component("tui"))
			if err := tui.Run(m); err != nil {
				return fmt.Errorf("terminal ui: %w", err)
			}
			return nil
		},
	}
}
