package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// rootFlags holds the flags shared by every subcommand.
type rootFlags struct {
	clauses string // classifier output JSON attached to the document
	config  string // optional TOML viewer configuration
}

// Execute runs the clauseview CLI and returns an error if any command
// fails.
//
// Logging defaults to info level on stderr; --verbose (-v) switches to
// debug, which traces render controller state transitions.
func Execute(ctx context.Context) error {
	var verbose bool
	var flags rootFlags

	root := &cobra.Command{
		Use:          "clauseview",
		Short:        "clauseview overlays AI-predicted contract clauses on rendered documents",
		Long:         `clauseview aligns the clause spans a classifier predicted for a contract onto the document's paginated layout and shows them as colored highlight rectangles, in the terminal or as exported images.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&flags.clauses, "clauses", "", "classifier output JSON with the clauses to highlight")
	root.PersistentFlags().StringVar(&flags.config, "config", "", "TOML viewer configuration file")

	root.AddCommand(newRenderCmd(&flags))
	root.AddCommand(newLocateCmd(&flags))
	root.AddCommand(newLegendCmd())
	root.AddCommand(newViewCmd(&flags))

	return root.ExecuteContext(ctx)
}
