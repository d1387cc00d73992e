package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var stateOpts struct {
	format  string
	theme   string
	timeout time.Duration
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the selection state after loading",
	Long: `Create a store from the configuration, mount it, wait for the header and
footer sets to load, and print the resulting selection state.

Load failures are reported in the output rather than as an exit status.`,
	Args: cobra.NoArgs,
	RunE: runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVarP(&stateOpts.format, "format", "f", "plain",
		"Output format: plain, json, yaml, ids")
	stateCmd.Flags().StringVar(&stateOpts.theme, "theme", "",
		"Select this theme after mounting")
	stateCmd.Flags().DurationVar(&stateOpts.timeout, "timeout", 30*time.Second,
		"Maximum time to wait for loading")
}

func runState(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(stateOpts.format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), stateOpts.timeout)
	defer cancel()

	s, err := openStore(ctx, newCatalog())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	if stateOpts.theme != "" {
		if err := s.SetTheme(stateOpts.theme); err != nil {
			return err
		}
	}

	s.Wait()

	return formatter.FormatSnapshot(os.Stdout, s.Snapshot())
}
