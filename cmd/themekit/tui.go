package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/themekit/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive selector TUI",
	Long: `Launch the terminal user interface for choosing the theme, header and footer.

Header and footer sets load in the background; their rows show the load state
until they arrive.

Key bindings:
  j/k, ↑/↓    Move between selectors
  h/l, ←/→    Previous / next option
  g/G         First / last option
  c           Copy the selection (theme name or variant markup)
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openStore(ctx, newCatalog())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	return tui.Run(ctx, tui.RunOptions{
		Config: cfg,
		Store:  s,
	})
}
