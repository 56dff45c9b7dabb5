// Package render drives page presentation for a loaded document: an
// explicit state machine around one open document, asynchronous
// rasterization with latest-wins cancellation, and highlight overlay
// recomputation tied to the raster it belongs to.
package render

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tsawler/clauseview/clauses"
	"github.com/tsawler/clauseview/document"
	"github.com/tsawler/clauseview/model"
	"github.com/tsawler/clauseview/overlay"
	"github.com/tsawler/clauseview/viewport"
)

// ErrNoDocument is returned by view operations before a successful Load.
var ErrNoDocument = errors.New("render: no document loaded")

// ErrSuperseded is returned by a Load that was replaced by a newer Load
// before it finished opening.
var ErrSuperseded = errors.New("render: load superseded")

const (
	// DefaultPadding is the horizontal padding, in device pixels per
	// side, that fit-to-width leaves around the page.
	DefaultPadding = 16.0

	// DefaultResizeDebounce coalesces bursts of Resize calls.
	DefaultResizeDebounce = 150 * time.Millisecond

	// MinScale and MaxScale bound every scale the controller accepts,
	// from SetScale as well as from fit-to-width.
	MinScale = 0.25
	MaxScale = 8.0
)

// Phase is the controller's lifecycle position.
type Phase int

const (
	// Idle means no document has been loaded yet, or Close ran.
	Idle Phase = iota
	// Loading means a document source is being opened.
	Loading
	// Ready means the displayed surface matches the requested page,
	// scale and rotation.
	Ready
	// Rasterizing means a newer page, scale or rotation was requested
	// and its surface is still being produced.
	Rasterizing
	// Failed means the last Load did not produce a document. The
	// controller stays here until a new Load.
	Failed
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Rasterizing:
		return "rasterizing"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Options configures a Controller. The zero value is usable: zero
// padding, scale 1, the default debounce and a silent logger.
type Options struct {
	// Padding is the horizontal padding per side subtracted from the
	// container width before fitting.
	Padding float64

	// DefaultScale applies to a freshly loaded document. Zero means 1.
	DefaultScale float64

	// ResizeDebounce is how long Resize waits for further calls before
	// recomputing the fit-to-width scale.
	ResizeDebounce time.Duration

	// Overlay builds the highlight rectangles after each rasterization.
	// The zero value colors by the process-wide taxonomy.
	Overlay overlay.Builder

	// Logger receives lifecycle tracing. Nil discards it.
	Logger *log.Logger
}

// DefaultOptions returns the options the command-line viewer runs with.
func DefaultOptions() Options {
	return Options{
		Padding:        DefaultPadding,
		DefaultScale:   1.0,
		ResizeDebounce: DefaultResizeDebounce,
	}
}

func (o Options) withDefaults() Options {
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.DefaultScale <= 0 {
		o.DefaultScale = 1.0
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = DefaultResizeDebounce
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Snapshot is one published view state. Everything a presentation layer
// needs to repaint is here; Surface and Rects always belong to the same
// rasterization.
type Snapshot struct {
	Phase     Phase
	Page      int
	PageCount int
	Scale     float64
	Rotation  int

	// Surface is the latest completed raster, nil until the first one
	// finishes. It survives phase changes so the previous page stays
	// visible while the next one renders.
	Surface image.Image

	// Rects are the highlight rectangles computed from Surface's glyph
	// snapshot, in device coordinates.
	Rects []model.HighlightRect

	// Err is the load failure when Phase is Failed.
	Err error

	// Seq increases by one per published state. Consumers can use it to
	// wait for anything newer than what they last saw.
	Seq int64
}

// Controller owns exactly one open document and serializes every view
// parameter change into at most one in-flight rasterization. A newer
// request supersedes an older one: the older context is cancelled, and
// should the older rasterization still run to completion, its result is
// discarded rather than displayed.
type Controller struct {
	provider document.Provider
	opts     Options
	log      *log.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	updates   chan Snapshot
	phase     Phase
	doc       document.Document
	pageCount int
	records   []clauses.Record
	page      int
	scale     float64
	rotation  int
	pageWidth float64
	surface   image.Image
	rects     []model.HighlightRect
	err       error
	seq       int64

	// gen identifies the newest requested configuration. A completed
	// render compares its own generation against it before publishing.
	gen    int
	cancel context.CancelFunc

	set overlay.Set

	resizeTimer  *time.Timer
	pendingWidth float64
}

// New returns an idle controller that opens documents through provider.
func New(provider document.Provider, opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{
		provider: provider,
		opts:     opts,
		log:      opts.Logger,
		updates:  make(chan Snapshot, 1),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Load opens a new document source and makes it the displayed one. Any
// in-flight work for the previous document is cancelled and its results
// discarded; the previous document is closed. On success the controller
// shows page 1 at the default scale and starts its rasterization. On
// failure the controller moves to Failed with a page count of zero and
// performs no further work until the next Load.
func (c *Controller) Load(ctx context.Context, data []byte, records []clauses.Record) error {
	c.mu.Lock()
	c.cancelRenderLocked()
	c.gen++
	gen := c.gen
	if c.doc != nil {
		c.doc.Close()
		c.doc = nil
	}
	c.phase = Loading
	c.pageCount = 0
	c.page = 0
	c.records = nil
	c.surface = nil
	c.rects = nil
	c.err = nil
	c.pageWidth = 0
	c.set.Clear()
	c.publishLocked()
	c.mu.Unlock()

	doc, err := c.provider.Open(ctx, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		if doc != nil {
			doc.Close()
		}
		return ErrSuperseded
	}
	if err != nil {
		c.phase = Failed
		c.err = err
		c.publishLocked()
		c.log.Error("document load failed", "error", err)
		return err
	}

	c.doc = doc
	c.pageCount = doc.PageCount()
	c.records = append([]clauses.Record(nil), records...)
	c.scale = clampScale(c.opts.DefaultScale)
	c.rotation = 0
	c.phase = Ready
	c.log.Info("document loaded", "pages", c.pageCount)
	if c.pageCount > 0 {
		c.page = 1
		c.cachePageSizeLocked()
		c.publishLocked()
		c.startRenderLocked()
	} else {
		c.publishLocked()
	}
	return nil
}

// SetPage requests a different page. Out-of-range pages are rejected
// without disturbing the current view.
func (c *Controller) SetPage(page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	if page < 1 || page > c.pageCount {
		return document.ErrPageOutOfRange
	}
	if page == c.page {
		return nil
	}
	c.page = page
	c.cachePageSizeLocked()
	c.startRenderLocked()
	return nil
}

// SetScale requests a different zoom, clamped to [MinScale, MaxScale].
func (c *Controller) SetScale(scale float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	scale = clampScale(scale)
	if scale == c.scale {
		return nil
	}
	c.scale = scale
	c.startRenderLocked()
	return nil
}

// SetRotation requests a different rotation, normalized to a quarter
// turn.
func (c *Controller) SetRotation(deg int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return ErrNoDocument
	}
	deg = viewport.NormalizeRotation(deg)
	if deg == c.rotation {
		return nil
	}
	c.rotation = deg
	c.startRenderLocked()
	return nil
}

// Resize reports a new container width. The fit-to-width scale is
// (width minus padding on both sides) divided by the page's unscaled
// rotation-0 width, so rotating a page never re-fits it. Calls are
// debounced: a burst of resize events produces one rasterization.
func (c *Controller) Resize(containerWidth float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return
	}
	c.pendingWidth = containerWidth
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
	}
	c.resizeTimer = time.AfterFunc(c.opts.ResizeDebounce, c.applyPendingResize)
}

func (c *Controller) applyPendingResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == nil {
		return
	}
	s := fitScale(c.pendingWidth, c.opts.Padding, c.pageWidth)
	if s <= 0 {
		return
	}
	s = clampScale(s)
	if s == c.scale {
		return
	}
	c.scale = s
	c.log.Debug("fit to width", "container", c.pendingWidth, "scale", s)
	c.startRenderLocked()
}

// Snapshot returns the current published state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Updates returns a channel carrying the newest snapshot after every
// state change. Publishing never blocks: when the consumer lags, older
// snapshots are dropped in favor of the latest.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

// Wait blocks until a published state satisfies pred or ctx ends. It
// returns the satisfying snapshot, or the latest one alongside the
// context error.
func (c *Controller) Wait(ctx context.Context, pred func(Snapshot) bool) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		snap := c.snapshotLocked()
		if pred(snap) {
			return snap, nil
		}
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				c.cond.Broadcast()
			case <-done:
			}
		}()
		c.cond.Wait()
		close(done)
	}
}

// Overlay returns the live highlight set for hit testing. Its contents
// always match the most recent published surface.
func (c *Controller) Overlay() *overlay.Set {
	return &c.set
}

// Close cancels in-flight work, closes the document and returns the
// controller to Idle.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelRenderLocked()
	c.gen++
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
		c.resizeTimer = nil
	}
	var err error
	if c.doc != nil {
		err = c.doc.Close()
		c.doc = nil
	}
	c.phase = Idle
	c.pageCount = 0
	c.page = 0
	c.records = nil
	c.surface = nil
	c.rects = nil
	c.err = nil
	c.pageWidth = 0
	c.set.Clear()
	c.publishLocked()
	return err
}

func (c *Controller) cancelRenderLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) cachePageSizeLocked() {
	page, err := c.doc.Page(c.page)
	if err != nil {
		c.pageWidth = 0
		return
	}
	c.pageWidth, _ = page.Size()
}

// startRenderLocked supersedes any in-flight rasterization with one for
// the current page, scale and rotation. Callers hold c.mu.
func (c *Controller) startRenderLocked() {
	if c.doc == nil || c.phase == Loading || c.phase == Failed {
		return
	}
	c.cancelRenderLocked()
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.phase = Rasterizing
	c.publishLocked()
	c.log.Debug("rasterizing", "generation", gen, "page", c.page, "scale", c.scale, "rotation", c.rotation)

	go c.runRender(ctx, gen, c.doc, c.records, c.page, c.scale, c.rotation)
}

func (c *Controller) runRender(ctx context.Context, gen int, doc document.Document, records []clauses.Record, pageNum int, scale float64, rotation int) {
	res, err := renderOnce(ctx, doc, c.opts.Overlay, records, pageNum, scale, rotation)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug("discarding superseded render", "generation", gen, "current", c.gen)
		return
	}
	c.cancel = nil
	if err != nil {
		// The previous surface stays up; recovery is the caller's
		// move, not an automatic retry.
		c.log.Warn("page render failed", "page", pageNum, "error", err)
		c.phase = Ready
		c.publishLocked()
		return
	}
	c.surface = res.surface
	c.rects = res.rects
	c.set.Replace(res.rects)
	c.phase = Ready
	c.publishLocked()
}

type renderResult struct {
	surface image.Image
	rects   []model.HighlightRect
}

// renderOnce materializes one configuration: the page surface first,
// then the highlight rectangles from the same text snapshot.
func renderOnce(ctx context.Context, doc document.Document, b overlay.Builder, records []clauses.Record, pageNum int, scale float64, rotation int) (renderResult, error) {
	page, err := doc.Page(pageNum)
	if err != nil {
		return renderResult{}, err
	}
	surface, err := page.Rasterize(ctx, scale, rotation)
	if err != nil {
		return renderResult{}, err
	}
	items, err := page.TextLayout(ctx)
	if err != nil {
		return renderResult{}, err
	}
	w, h := page.Size()
	vp := viewport.New(scale, rotation, w, h)
	return renderResult{
		surface: surface,
		rects:   b.Build(items, records, vp),
	}, nil
}

func (c *Controller) snapshotLocked() Snapshot {
	rects := make([]model.HighlightRect, len(c.rects))
	copy(rects, c.rects)
	return Snapshot{
		Phase:     c.phase,
		Page:      c.page,
		PageCount: c.pageCount,
		Scale:     c.scale,
		Rotation:  c.rotation,
		Surface:   c.surface,
		Rects:     rects,
		Err:       c.err,
		Seq:       c.seq,
	}
}

// publishLocked announces the current state: the wait condition wakes
// and the update channel is refreshed, dropping an unconsumed older
// snapshot. Callers hold c.mu.
func (c *Controller) publishLocked() {
	c.seq++
	c.cond.Broadcast()
	snap := c.snapshotLocked()
	for {
		select {
		case c.updates <- snap:
			return
		default:
			select {
			case <-c.updates:
			default:
			}
		}
	}
}

func fitScale(containerWidth, padding, pageWidth float64) float64 {
	if pageWidth <= 0 {
		return 0
	}
	avail := containerWidth - 2*padding
	if avail <= 0 {
		return 0
	}
	return avail / pageWidth
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
