package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/clauseview/taxonomy"
)

func newLegendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legend",
		Short: "Show the clause category color registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printLegend()
			return nil
		},
	}
}

func printLegend() {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Clause Categories"))
	b.WriteString("\n\n")

	categories := taxonomy.Categories()
	nameWidth := 0
	for _, c := range categories {
		if len(c.Name) > nameWidth {
			nameWidth = len(c.Name)
		}
	}

	for _, c := range categories {
		b.WriteString(fmt.Sprintf("  %s  %-*s  %s\n",
			swatch(c.Color), nameWidth, c.Name, styleDim.Render(c.Description)))
	}

	b.WriteString(fmt.Sprintf("\n  %s  %-*s  %s\n",
		swatch(taxonomy.Fallback), nameWidth, "(everything else)",
		styleDim.Render("Categories outside the registry share one fallback color.")))

	fmt.Print(b.String())
}
