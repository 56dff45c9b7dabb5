package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tsawler/clauseview/overlay"
	"github.com/tsawler/clauseview/render"
)

// cellPixels is the nominal pixel width of one terminal cell, used to
// translate the terminal width into a fit-to-width container size.
const cellPixels = 8.0

func newViewCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view <document>",
		Short: "Interactive terminal viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), args[0], flags)
		},
	}
}

func runView(ctx context.Context, input string, flags *rootFlags) error {
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	viewer, colorFn, err := newViewer(input, flags, cfg)
	if err != nil {
		return err
	}

	// Controller tracing on stderr would tear the alternate screen, so
	// the TUI runs without it regardless of --verbose.
	opts := cfg.renderOptions(nil, colorFn)

	ctrl, err := viewer.Controller(ctx, opts)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	m := viewModel{
		ctrl: ctrl,
		doc:  filepath.Base(input),
		snap: ctrl.Snapshot(),
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// snapshotMsg carries a controller publication into the update loop.
type snapshotMsg render.Snapshot

// waitForSnapshot blocks on the controller's update channel and hands
// the next snapshot to bubbletea. The returned command re-arms itself
// from Update.
func waitForSnapshot(updates <-chan render.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-updates)
	}
}

// viewModel is the bubbletea model for the interactive viewer.
type viewModel struct {
	ctrl *render.Controller
	doc  string
	snap render.Snapshot
	cols int
	rows int
}

func (m viewModel) Init() tea.Cmd {
	return waitForSnapshot(m.ctrl.Updates())
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = render.Snapshot(msg)
		return m, waitForSnapshot(m.ctrl.Updates())

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.ctrl.Resize(float64(msg.Width) * cellPixels)

	case tea.KeyMsg:
		// Page and zoom keys past their limits are no-ops; the
		// controller rejects them and the view simply stays put.
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "pgdown":
			_ = m.ctrl.SetPage(m.snap.Page + 1)
		case "left", "h", "pgup":
			_ = m.ctrl.SetPage(m.snap.Page - 1)
		case "g", "home":
			_ = m.ctrl.SetPage(1)
		case "G", "end":
			_ = m.ctrl.SetPage(m.snap.PageCount)
		case "+", "=":
			_ = m.ctrl.SetScale(m.snap.Scale * 1.25)
		case "-", "_":
			_ = m.ctrl.SetScale(m.snap.Scale / 1.25)
		case "1":
			_ = m.ctrl.SetScale(1.0)
		case "f":
			if m.cols > 0 {
				m.ctrl.Resize(float64(m.cols) * cellPixels)
			}
		case "r":
			_ = m.ctrl.SetRotation(m.snap.Rotation + 90)
		case "R":
			_ = m.ctrl.SetRotation(m.snap.Rotation - 90)
		}
	}
	return m, nil
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("clauseview"))
	b.WriteString("  ")
	b.WriteString(styleGray.Render(m.doc))
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	switch m.snap.Phase {
	case render.Failed:
		b.WriteString(styleError.Render(fmt.Sprintf("load failed: %v", m.snap.Err)))
		b.WriteString("\n")
	default:
		b.WriteString(m.summary())
	}

	b.WriteString("\n")
	b.WriteString(styleDim.Render("←/→ page  +/- zoom  1 actual size  f fit width  r rotate  q quit"))
	return b.String()
}

func (m viewModel) statusLine() string {
	s := m.snap
	badge := phaseStyle(s.Phase).Render(s.Phase.String())

	var parts []string
	parts = append(parts, badge)
	if s.PageCount > 0 {
		parts = append(parts, fmt.Sprintf("page %d/%d", s.Page, s.PageCount))
		parts = append(parts, fmt.Sprintf("zoom %.0f%%", s.Scale*100))
		if s.Rotation != 0 {
			parts = append(parts, fmt.Sprintf("rotated %d°", s.Rotation))
		}
	}
	if s.Surface != nil {
		bounds := s.Surface.Bounds()
		parts = append(parts, styleDim.Render(fmt.Sprintf("%dx%d px", bounds.Dx(), bounds.Dy())))
	}
	return "  " + strings.Join(parts, "   ")
}

// summary lists the highlight categories found on the current page.
func (m viewModel) summary() string {
	legend := overlay.Summarize(m.snap.Rects)
	if len(legend) == 0 {
		return styleDim.Render("  no highlights on this page") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %d highlights\n\n", len(m.snap.Rects))
	for _, entry := range legend {
		fmt.Fprintf(&b, "  %s %-40s %d\n", swatch(entry.Color), entry.Category, entry.Count)
	}
	return b.String()
}
