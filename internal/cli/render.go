package cli

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/clauseview"
	"github.com/tsawler/clauseview/overlay"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	page     int
	all      bool
	scale    float64
	rotation int
	output   string
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Rasterize pages with clause highlights to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], flags, &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page to render")
	cmd.Flags().BoolVar(&opts.all, "all", false, "render every page")
	cmd.Flags().Float64VarP(&opts.scale, "scale", "s", 0, "zoom factor (0 uses the configured default)")
	cmd.Flags().IntVarP(&opts.rotation, "rotation", "r", 0, "rotation in degrees, floored to a quarter turn")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single page) or base path (--all)")

	return cmd
}

func runRender(ctx context.Context, input string, flags *rootFlags, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	scale := opts.scale
	if scale == 0 {
		scale = cfg.Scale
	}

	viewer, _, err := newViewer(input, flags, cfg)
	if err != nil {
		return err
	}
	comp := cfg.compositor()
	base := basePath(opts.output, input)

	if !opts.all {
		path := opts.output
		if path == "" {
			path = base + ".png"
		}
		return renderOne(ctx, viewer, comp, opts.page, scale, opts.rotation, path)
	}

	count, err := viewer.PageCount(ctx)
	if err != nil {
		return err
	}
	logger.Infof("Rendering %d pages of %s", count, input)
	for page := 1; page <= count; page++ {
		path := fmt.Sprintf("%s_p%d.png", base, page)
		if err := renderOne(ctx, viewer, comp, page, scale, opts.rotation, path); err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
	}
	return nil
}

// renderOne rasterizes a single page, burns the highlights in and
// writes the PNG.
func renderOne(ctx context.Context, viewer *clauseview.Viewer, comp overlay.Compositor, page int, scale float64, rotation int, path string) error {
	logger := loggerFromContext(ctx)

	surface, rects, err := viewer.RenderPage(ctx, page, scale, rotation)
	if err != nil {
		return err
	}
	legend := overlay.Summarize(rects)
	logger.Debugf("Page %d: %d highlights in %d categories", page, len(rects), len(legend))

	var img image.Image = surface
	if len(rects) > 0 {
		img = comp.Composite(surface, rects)
	}
	if err := writePNG(path, img); err != nil {
		return err
	}
	logger.Infof("Generated %s", path)
	return nil
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

// basePath derives the base output path from the output and input file
// paths, stripping a .png extension so per-page suffixes can attach.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return strings.TrimSuffix(output, ".png")
}
