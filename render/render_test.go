package render

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tsawler/clauseview/clauses"
	"github.com/tsawler/clauseview/document"
	"github.com/tsawler/clauseview/document/memdoc"
	"github.com/tsawler/clauseview/model"
)

const waitTimeout = 5 * time.Second

// twoPageProvider serves a letter-sized page carrying one glyph run and
// a smaller second page, so surface dimensions identify which page a
// raster came from.
func twoPageProvider() *memdoc.Provider {
	return &memdoc.Provider{
		Pages: []memdoc.PageSpec{
			{
				Width:  612,
				Height: 792,
				Glyphs: []model.GlyphItem{
					{Text: "Termination", Transform: model.Matrix{12, 0, 0, 12, 100, 700}, Width: 66},
				},
			},
			{Width: 400, Height: 500},
		},
	}
}

func mustLoad(t *testing.T, c *Controller, records []clauses.Record) {
	t.Helper()
	if err := c.Load(context.Background(), nil, records); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func waitFor(t *testing.T, c *Controller, pred func(Snapshot) bool) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	snap, err := c.Wait(ctx, pred)
	if err != nil {
		t.Fatalf("Wait() error = %v in phase %v", err, snap.Phase)
	}
	return snap
}

func waitReady(t *testing.T, c *Controller) Snapshot {
	t.Helper()
	return waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Surface != nil
	})
}

func surfaceSize(t *testing.T, s Snapshot) (int, int) {
	t.Helper()
	if s.Surface == nil {
		t.Fatal("snapshot has no surface")
	}
	b := s.Surface.Bounds()
	return b.Dx(), b.Dy()
}

// ============================================================================
// Load Tests
// ============================================================================

func TestLoadShowsFirstPage(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	snap := waitReady(t, c)

	if snap.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", snap.PageCount)
	}
	if snap.Page != 1 {
		t.Errorf("Page = %d, want 1", snap.Page)
	}
	if snap.Scale != 1.0 {
		t.Errorf("Scale = %v, want 1.0", snap.Scale)
	}
	if snap.Rotation != 0 {
		t.Errorf("Rotation = %d, want 0", snap.Rotation)
	}
	if w, h := surfaceSize(t, snap); w != 612 || h != 792 {
		t.Errorf("surface = %dx%d, want 612x792", w, h)
	}
}

func TestLoadFailure(t *testing.T) {
	boom := errors.New("unreadable upload")
	c := New(&memdoc.Provider{OpenErr: boom}, DefaultOptions())
	defer c.Close()

	if err := c.Load(context.Background(), nil, nil); !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want %v", err, boom)
	}

	snap := c.Snapshot()
	if snap.Phase != Failed {
		t.Errorf("Phase = %v, want Failed", snap.Phase)
	}
	if snap.PageCount != 0 {
		t.Errorf("PageCount = %d, want 0", snap.PageCount)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("Err = %v, want %v", snap.Err, boom)
	}

	if err := c.SetPage(1); !errors.Is(err, ErrNoDocument) {
		t.Errorf("SetPage() error = %v, want ErrNoDocument", err)
	}
	if err := c.SetScale(2); !errors.Is(err, ErrNoDocument) {
		t.Errorf("SetScale() error = %v, want ErrNoDocument", err)
	}
}

func TestLoadReplacesDocument(t *testing.T) {
	p := twoPageProvider()
	c := New(p, DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	// memdoc ignores the upload bytes, so swapping the page set stands
	// in for loading a different file through the same provider.
	p.Pages = []memdoc.PageSpec{{Width: 300, Height: 300}}
	mustLoad(t, c, nil)
	snap := waitReady(t, c)

	if snap.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", snap.PageCount)
	}
	if snap.Page != 1 {
		t.Errorf("Page = %d, want 1", snap.Page)
	}
	if w, h := surfaceSize(t, snap); w != 300 || h != 300 {
		t.Errorf("surface = %dx%d, want 300x300", w, h)
	}
}

func TestReloadTearsDownPreviousState(t *testing.T) {
	records := []clauses.Record{
		{SequenceNumber: 1, Category: "Expiration Date", Text: "Termination"},
	}
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, records)
	snap := waitReady(t, c)
	if len(snap.Rects) != 1 {
		t.Fatalf("Rects = %d, want 1", len(snap.Rects))
	}

	// Reload without records: the old document's highlights must not
	// leak onto the new one.
	mustLoad(t, c, nil)
	snap = waitReady(t, c)
	if len(snap.Rects) != 0 {
		t.Errorf("Rects after reload = %d, want 0", len(snap.Rects))
	}
	if got := c.Overlay().Current(); len(got) != 0 {
		t.Errorf("Overlay().Current() = %d rects, want 0", len(got))
	}
}

// ============================================================================
// Page Navigation Tests
// ============================================================================

func TestSetPageRenders(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.SetPage(2); err != nil {
		t.Fatalf("SetPage(2) error = %v", err)
	}
	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Page == 2 && s.Surface != nil
	})
	if w, h := surfaceSize(t, snap); w != 400 || h != 500 {
		t.Errorf("surface = %dx%d, want 400x500", w, h)
	}
}

func TestSetPageOutOfRange(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	for _, page := range []int{0, -1, 3} {
		if err := c.SetPage(page); !errors.Is(err, document.ErrPageOutOfRange) {
			t.Errorf("SetPage(%d) error = %v, want ErrPageOutOfRange", page, err)
		}
	}
	if snap := c.Snapshot(); snap.Page != 1 {
		t.Errorf("Page = %d, want 1 after rejected navigation", snap.Page)
	}
}

func TestSamePageDoesNotRerender(t *testing.T) {
	var renders atomic.Int32
	p := twoPageProvider()
	p.BeforeRasterize = func(ctx context.Context, page int) error {
		renders.Add(1)
		return nil
	}
	c := New(p, DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.SetPage(1); err != nil {
		t.Fatalf("SetPage(1) error = %v", err)
	}
	if got := renders.Load(); got != 1 {
		t.Errorf("rasterizations = %d, want 1", got)
	}
}

// TestLaterRequestWins pins the cancellation contract: when page 2 is
// requested while page 1 is still rasterizing, only page 2's output is
// ever shown, even though page 1 runs to completion afterwards.
func TestLaterRequestWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := twoPageProvider()
	p.BeforeRasterize = func(ctx context.Context, page int) error {
		if page == 1 {
			close(started)
			<-release
		}
		return nil
	}
	c := New(p, DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	<-started

	if err := c.SetPage(2); err != nil {
		t.Fatalf("SetPage(2) error = %v", err)
	}
	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Page == 2 && s.Surface != nil
	})
	if w, h := surfaceSize(t, snap); w != 400 || h != 500 {
		t.Fatalf("surface = %dx%d, want 400x500", w, h)
	}

	// Let page 1 finish now. Its result is stale and must never be
	// published.
	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	last, err := c.Wait(ctx, func(s Snapshot) bool { return s.Seq > snap.Seq })
	if err == nil {
		t.Fatalf("stale render published: page %d, phase %v", last.Page, last.Phase)
	}
	if w, h := surfaceSize(t, c.Snapshot()); w != 400 || h != 500 {
		t.Errorf("surface = %dx%d, want 400x500 after stale completion", w, h)
	}
}

// ============================================================================
// Scale & Rotation Tests
// ============================================================================

func TestSetScaleRerenders(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.SetScale(2); err != nil {
		t.Fatalf("SetScale(2) error = %v", err)
	}
	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Scale == 2
	})
	if w, h := surfaceSize(t, snap); w != 1224 || h != 1584 {
		t.Errorf("surface = %dx%d, want 1224x1584", w, h)
	}
}

func TestSetScaleClamps(t *testing.T) {
	p := &memdoc.Provider{Pages: []memdoc.PageSpec{{Width: 10, Height: 12}}}
	c := New(p, DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.SetScale(100); err != nil {
		t.Fatalf("SetScale(100) error = %v", err)
	}
	snap := waitFor(t, c, func(s Snapshot) bool { return s.Phase == Ready && s.Scale != 1 })
	if snap.Scale != MaxScale {
		t.Errorf("Scale = %v, want %v", snap.Scale, MaxScale)
	}

	if err := c.SetScale(0.001); err != nil {
		t.Fatalf("SetScale(0.001) error = %v", err)
	}
	snap = waitFor(t, c, func(s Snapshot) bool { return s.Phase == Ready && s.Scale < 1 })
	if snap.Scale != MinScale {
		t.Errorf("Scale = %v, want %v", snap.Scale, MinScale)
	}
}

func TestSetRotationSwapsSurface(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.SetRotation(90); err != nil {
		t.Fatalf("SetRotation(90) error = %v", err)
	}
	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Rotation == 90
	})
	if w, h := surfaceSize(t, snap); w != 792 || h != 612 {
		t.Errorf("surface = %dx%d, want 792x612", w, h)
	}
}

func TestSetRotationNormalizes(t *testing.T) {
	var renders atomic.Int32
	p := twoPageProvider()
	p.BeforeRasterize = func(ctx context.Context, page int) error {
		renders.Add(1)
		return nil
	}
	c := New(p, DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.SetRotation(90); err != nil {
		t.Fatalf("SetRotation(90) error = %v", err)
	}
	waitFor(t, c, func(s Snapshot) bool { return s.Phase == Ready && s.Rotation == 90 })
	before := renders.Load()

	// 450 degrees is the same quarter turn; nothing should happen.
	if err := c.SetRotation(450); err != nil {
		t.Fatalf("SetRotation(450) error = %v", err)
	}
	if got := renders.Load(); got != before {
		t.Errorf("rasterizations = %d, want %d", got, before)
	}
}

// ============================================================================
// Fit-to-Width Tests
// ============================================================================

func TestFitScale(t *testing.T) {
	tests := []struct {
		name      string
		container float64
		padding   float64
		pageWidth float64
		want      float64
	}{
		{"exact fit", 644, 16, 612, 1.0},
		{"double width", 1256, 16, 612, 2.0},
		{"no padding", 612, 0, 612, 1.0},
		{"unknown page width", 644, 16, 0, 0},
		{"container narrower than padding", 20, 16, 612, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitScale(tt.container, tt.padding, tt.pageWidth); got != tt.want {
				t.Errorf("fitScale(%v, %v, %v) = %v, want %v",
					tt.container, tt.padding, tt.pageWidth, got, tt.want)
			}
		})
	}
}

func TestResizeDebounces(t *testing.T) {
	var renders atomic.Int32
	p := twoPageProvider()
	p.BeforeRasterize = func(ctx context.Context, page int) error {
		renders.Add(1)
		return nil
	}
	opts := DefaultOptions()
	opts.ResizeDebounce = 50 * time.Millisecond
	c := New(p, opts)
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	// A burst of container widths; only the final one may render.
	c.Resize(900)
	c.Resize(1000)
	c.Resize(1256)

	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Scale == 2
	})
	if w, h := surfaceSize(t, snap); w != 1224 || h != 1584 {
		t.Errorf("surface = %dx%d, want 1224x1584", w, h)
	}
	if got := renders.Load(); got != 2 {
		t.Errorf("rasterizations = %d, want 2 (load + one resize)", got)
	}
}

func TestFitUsesUprightWidth(t *testing.T) {
	opts := DefaultOptions()
	opts.ResizeDebounce = 20 * time.Millisecond
	c := New(twoPageProvider(), opts)
	defer c.Close()

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.SetRotation(90); err != nil {
		t.Fatalf("SetRotation(90) error = %v", err)
	}
	waitFor(t, c, func(s Snapshot) bool { return s.Phase == Ready && s.Rotation == 90 })

	// Fitting is based on the page's rotation-0 width of 612, not the
	// rotated extent of 792.
	c.Resize(1256)
	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Scale == 2
	})
	if snap.Rotation != 90 {
		t.Errorf("Rotation = %d, want 90", snap.Rotation)
	}
}

func TestResizeWithoutDocumentIsIgnored(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	c.Resize(1000)
	if snap := c.Snapshot(); snap.Phase != Idle {
		t.Errorf("Phase = %v, want Idle", snap.Phase)
	}
}

// ============================================================================
// Overlay Tests
// ============================================================================

func TestOverlayTracksRender(t *testing.T) {
	records := []clauses.Record{
		{SequenceNumber: 1, Category: "Expiration Date", Text: "Termination"},
	}
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, records)
	snap := waitReady(t, c)

	if len(snap.Rects) != 1 {
		t.Fatalf("Rects = %d, want 1", len(snap.Rects))
	}
	r := snap.Rects[0]
	if r.Left != 100 || r.Top != 80 || r.Width != 66 || r.Height != 12 {
		t.Errorf("rect = %+v, want {100 80 66 12}", r.Rect)
	}
	if r.Category != "Expiration Date" {
		t.Errorf("Category = %q, want %q", r.Category, "Expiration Date")
	}

	// Zooming reprojects the highlights along with the surface.
	if err := c.SetScale(2); err != nil {
		t.Fatalf("SetScale(2) error = %v", err)
	}
	snap = waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Scale == 2
	})
	if len(snap.Rects) != 1 {
		t.Fatalf("Rects = %d, want 1 after zoom", len(snap.Rects))
	}
	r = snap.Rects[0]
	if r.Left != 200 || r.Top != 160 || r.Width != 132 || r.Height != 24 {
		t.Errorf("rect = %+v, want {200 160 132 24}", r.Rect)
	}

	hits := c.Overlay().HitTest(model.Point{X: 210, Y: 170})
	if len(hits) != 1 {
		t.Errorf("HitTest() = %d rects, want 1", len(hits))
	}
}

func TestOverlayEmptyOffClausePage(t *testing.T) {
	records := []clauses.Record{
		{SequenceNumber: 1, Category: "Expiration Date", Text: "Termination"},
	}
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, records)
	waitReady(t, c)

	if err := c.SetPage(2); err != nil {
		t.Fatalf("SetPage(2) error = %v", err)
	}
	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Page == 2
	})
	if len(snap.Rects) != 0 {
		t.Errorf("Rects = %d, want 0 on a page without the clause", len(snap.Rects))
	}
	if got := c.Overlay().Current(); len(got) != 0 {
		t.Errorf("Overlay().Current() = %d rects, want 0", len(got))
	}
}

// ============================================================================
// Failure & Lifecycle Tests
// ============================================================================

func TestRenderFailureKeepsPreviousSurface(t *testing.T) {
	p := twoPageProvider()
	p.BeforeRasterize = func(ctx context.Context, page int) error {
		if page == 2 {
			return errors.New("raster backend exploded")
		}
		return nil
	}
	c := New(p, DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	first := waitReady(t, c)

	if err := c.SetPage(2); err != nil {
		t.Fatalf("SetPage(2) error = %v", err)
	}
	snap := waitFor(t, c, func(s Snapshot) bool {
		return s.Phase == Ready && s.Seq > first.Seq
	})

	// The failed render is not retried and the old surface stays up.
	if w, h := surfaceSize(t, snap); w != 612 || h != 792 {
		t.Errorf("surface = %dx%d, want 612x792 to remain", w, h)
	}
}

func TestCloseResets(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())

	mustLoad(t, c, nil)
	waitReady(t, c)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	snap := c.Snapshot()
	if snap.Phase != Idle {
		t.Errorf("Phase = %v, want Idle", snap.Phase)
	}
	if snap.Surface != nil {
		t.Error("Surface survived Close")
	}
	if snap.PageCount != 0 {
		t.Errorf("PageCount = %d, want 0", snap.PageCount)
	}
	if err := c.SetPage(1); !errors.Is(err, ErrNoDocument) {
		t.Errorf("SetPage() error = %v, want ErrNoDocument", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestUpdatesCarriesLatestSnapshot(t *testing.T) {
	c := New(twoPageProvider(), DefaultOptions())
	defer c.Close()

	mustLoad(t, c, nil)
	snap := waitReady(t, c)

	var got Snapshot
	var seen bool
	for {
		select {
		case s := <-c.Updates():
			got, seen = s, true
			continue
		default:
		}
		break
	}
	if !seen {
		t.Fatal("Updates() carried nothing")
	}
	if got.Seq != snap.Seq {
		t.Errorf("Updates() seq = %d, want latest %d", got.Seq, snap.Seq)
	}
	if got.Phase != Ready {
		t.Errorf("Updates() phase = %v, want Ready", got.Phase)
	}
}
