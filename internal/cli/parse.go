package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takumik/keizu/pkg/genealogy"
	"github.com/takumik/keizu/pkg/ledger"
)

// newParseCmd creates the parse command for extracting the genealogy as
// JSON without rendering. The JSON round-trips through the render command,
// so a workbook can be parsed once and re-rendered many times.
func newParseCmd() *cobra.Command {
	var (
		output string
		sheet  string
	)

	cmd := &cobra.Command{
		Use:   "parse [workbook.xlsx]",
		Short: "Parse a drawing ledger and export the genealogy as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), args[0], output, sheet)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with .json)")
	cmd.Flags().StringVarP(&sheet, "sheet", "s", "", "worksheet to read (default from config, normally Sheet1)")

	return cmd
}

func runParse(ctx context.Context, input, output, sheet string) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	if sheet == "" {
		sheet = cfg.Ledger.Sheet
	}

	p := newProgress(logger)
	led, err := ledger.ReadFile(input, sheet)
	if err != nil {
		return err
	}
	logger.Debugf("Parsed %d records from %q", len(led.Records), led.Sheet)

	tree := genealogy.Build(led)
	if err := tree.Validate(); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Built genealogy: %d drawings, %d links", tree.NodeCount(), tree.EdgeCount()))

	if output == "" {
		output = strings.TrimSuffix(input, ".xlsx") + ".json"
	}
	if err := genealogy.ExportJSON(tree, output); err != nil {
		return err
	}

	printSuccess("Exported genealogy")
	printFile(output)
	printStats(tree.NodeCount(), tree.EdgeCount(), false)

	roots := tree.Roots()
	names := make([]string, 0, len(roots))
	for _, r := range roots {
		names = append(names, r.ID)
	}
	printDetail("roots: %s", strings.Join(names, ", "))

	return nil
}
