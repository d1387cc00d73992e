package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/output"
	"github.com/jmylchreest/themekit/internal/variant"
)

var variantsOpts struct {
	format     string
	template   string
	noMarkup   bool
	markupSize int
}

var variantsCmd = &cobra.Command{
	Use:   "variants <headers|footers>",
	Short: "Load and print a header or footer set",
	Long: `Load the header or footer set from the configured source and print it.

Examples:
  # Bundled headers
  themekit variants headers

  # Footers from a directory, as JSON
  themekit variants footers --format json

  # Custom line template
  themekit variants headers --template '{{.Index}}: {{.Name}}'`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"headers", "footers"},
	RunE:      runVariants,
}

func init() {
	rootCmd.AddCommand(variantsCmd)

	variantsCmd.Flags().StringVarP(&variantsOpts.format, "format", "f", "plain",
		"Output format: plain, json, yaml, ids")
	variantsCmd.Flags().StringVar(&variantsOpts.template, "template", "",
		"Go template for plain output lines")
	variantsCmd.Flags().BoolVar(&variantsOpts.noMarkup, "no-markup", false,
		"Omit markup from plain output")
	variantsCmd.Flags().IntVar(&variantsOpts.markupSize, "markup-width", 60,
		"Truncate markup in plain output (0 = unlimited)")
}

func runVariants(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}

	ft, err := output.ParseFormat(variantsOpts.format)
	if err != nil {
		return err
	}
	opts := output.DefaultFormatterOptions()
	opts.Template = variantsOpts.template
	opts.ShowMarkup = !variantsOpts.noMarkup
	opts.MarkupWidth = variantsOpts.markupSize

	variants, err := variant.Load(cmd.Context(), fetchFunc(kind))
	if err != nil {
		return fmt.Errorf("failed to load %ss: %w", kind, err)
	}

	return output.NewFormatter(ft, opts).FormatVariants(os.Stdout, variants)
}
