package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tsawler/clauseview/model"
)

// locateOpts holds the command-line flags for the locate command.
type locateOpts struct {
	page     int
	scale    float64
	rotation int
	asJSON   bool
}

func newLocateCmd(flags *rootFlags) *cobra.Command {
	var opts locateOpts

	cmd := &cobra.Command{
		Use:   "locate <document>",
		Short: "Print the highlight rectangles for one page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(cmd.Context(), args[0], flags, &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page to inspect")
	cmd.Flags().Float64VarP(&opts.scale, "scale", "s", 1.0, "zoom factor")
	cmd.Flags().IntVarP(&opts.rotation, "rotation", "r", 0, "rotation in degrees")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit JSON instead of a table")

	return cmd
}

// rectJSON is the locate command's wire shape, mirroring the field
// names of the classifier output the rectangles came from.
type rectJSON struct {
	Clause   int     `json:"clause_no"`
	Category string  `json:"category"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Tooltip  string  `json:"tooltip"`
}

func runLocate(ctx context.Context, input string, flags *rootFlags, opts *locateOpts) error {
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	viewer, _, err := newViewer(input, flags, cfg)
	if err != nil {
		return err
	}

	rects, err := viewer.LocatePage(ctx, opts.page, opts.scale, opts.rotation)
	if err != nil {
		return err
	}

	if opts.asJSON {
		return printJSON(rects)
	}
	printTable(rects)
	return nil
}

func printJSON(rects []model.HighlightRect) error {
	out := make([]rectJSON, len(rects))
	for i, r := range rects {
		out[i] = rectJSON{
			Clause:   r.ClauseSequence,
			Category: r.Category,
			Left:     r.Left,
			Top:      r.Top,
			Width:    r.Width,
			Height:   r.Height,
			Tooltip:  r.TooltipLabel,
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTable(rects []model.HighlightRect) {
	if len(rects) == 0 {
		fmt.Println(styleDim.Render("no highlights on this page"))
		return
	}

	rows := make([][]string, len(rects))
	for i, r := range rects {
		rows[i] = []string{
			fmt.Sprintf("%d", r.ClauseSequence),
			r.Category,
			fmt.Sprintf("%.1f", r.Left),
			fmt.Sprintf("%.1f", r.Top),
			fmt.Sprintf("%.1f", r.Width),
			fmt.Sprintf("%.1f", r.Height),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("#", "Category", "Left", "Top", "Width", "Height").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 && row < len(rects) {
				return lipgloss.NewStyle().Foreground(termColor(rects[row].Color))
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
}
