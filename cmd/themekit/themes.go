package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/themekit/internal/output"
)

var themesOpts struct {
	format string
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Long: `List the bundled themes and those in the user themes directory.

A user theme with the same name as a bundled one overrides it.`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

var themesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a theme's stylesheet with imports inlined",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		css, err := newCatalog().CSS(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), css)
		return err
	},
}

var themesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user themes directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := newCatalog()
		if catalog.Dir() == "" {
			return fmt.Errorf("no user themes directory available")
		}
		if err := catalog.CreateDir(); err != nil {
			return fmt.Errorf("failed to create themes directory: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), catalog.Dir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
	themesCmd.AddCommand(themesShowCmd, themesInitCmd)

	themesCmd.Flags().StringVarP(&themesOpts.format, "format", "f", "plain",
		"Output format: plain, json, yaml, ids")
}

func runThemes(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(themesOpts.format)
	if err != nil {
		return err
	}

	infos, err := newCatalog().Info()
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}

	return formatter.FormatThemes(os.Stdout, infos)
}

// newFormatter parses a --format value into a formatter with default options.
func newFormatter(format string) (output.Formatter, error) {
	ft, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(ft, output.DefaultFormatterOptions()), nil
}
