package memdoc

import (
	"context"
	"errors"
	"testing"

	"github.com/tsawler/clauseview/document"
	"github.com/tsawler/clauseview/model"
)

func twoPageProvider() *Provider {
	return &Provider{
		Pages: []PageSpec{
			{
				Width:  612,
				Height: 792,
				Glyphs: []model.GlyphItem{
					{Text: "Termination", Transform: model.Matrix{12, 0, 0, 12, 100, 700}, Width: 66},
				},
			},
			{Width: 612, Height: 792},
		},
	}
}

// ============================================================================
// Open & Page Access Tests
// ============================================================================

func TestOpenReturnsConfiguredError(t *testing.T) {
	want := errors.New("fixture load failure")
	p := &Provider{OpenErr: want}

	_, err := p.Open(context.Background(), nil)
	if !errors.Is(err, want) {
		t.Errorf("Open() error = %v, want %v", err, want)
	}
}

func TestOpenHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := twoPageProvider().Open(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Open() error = %v, want context.Canceled", err)
	}
}

func TestPageCount(t *testing.T) {
	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := doc.PageCount(); got != 2 {
		t.Errorf("PageCount() = %d, want 2", got)
	}
}

func TestPageOutOfRange(t *testing.T) {
	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tests := []struct {
		name   string
		number int
	}{
		{"zero", 0},
		{"negative", -1},
		{"past end", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doc.Page(tt.number)
			if !errors.Is(err, document.ErrPageOutOfRange) {
				t.Errorf("Page(%d) error = %v, want ErrPageOutOfRange", tt.number, err)
			}
		})
	}
}

func TestClosedDocumentRejectsPages(t *testing.T) {
	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := doc.Page(1); !errors.Is(err, document.ErrDocumentClosed) {
		t.Errorf("Page(1) after Close error = %v, want ErrDocumentClosed", err)
	}
}

// ============================================================================
// TextLayout Tests
// ============================================================================

func TestTextLayoutReturnsCopies(t *testing.T) {
	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page(1) error = %v", err)
	}

	first, err := page.TextLayout(context.Background())
	if err != nil {
		t.Fatalf("TextLayout() error = %v", err)
	}
	first[0].Text = "mutated"

	second, err := page.TextLayout(context.Background())
	if err != nil {
		t.Fatalf("TextLayout() error = %v", err)
	}
	if second[0].Text != "Termination" {
		t.Errorf("TextLayout() after mutation = %q, want %q", second[0].Text, "Termination")
	}
}

func TestTextLayoutHonorsCancelledContext(t *testing.T) {
	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page(1) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := page.TextLayout(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("TextLayout() error = %v, want context.Canceled", err)
	}
}

// ============================================================================
// Rasterize Tests
// ============================================================================

func TestRasterizeSurfaceSize(t *testing.T) {
	tests := []struct {
		name     string
		scale    float64
		rotation int
		wantW    int
		wantH    int
	}{
		{"unrotated", 1.0, 0, 612, 792},
		{"scaled", 1.5, 0, 918, 1188},
		{"quarter turn swaps", 1.0, 90, 792, 612},
		{"three quarter swaps scaled", 2.0, 270, 1584, 1224},
	}

	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page(1) error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := page.Rasterize(context.Background(), tt.scale, tt.rotation)
			if err != nil {
				t.Fatalf("Rasterize() error = %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("Rasterize() size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRasterizeWhiteSurface(t *testing.T) {
	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	page, err := doc.Page(2)
	if err != nil {
		t.Fatalf("Page(2) error = %v", err)
	}

	img, err := page.Rasterize(context.Background(), 1.0, 0)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	r, g, b, a := img.At(300, 400).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("Rasterize() pixel = (%d, %d, %d, %d), want opaque white", r, g, b, a)
	}
}

func TestRasterizeRunsHook(t *testing.T) {
	hookErr := errors.New("render blocked")
	var sawPage int
	p := twoPageProvider()
	p.BeforeRasterize = func(ctx context.Context, pageNumber int) error {
		sawPage = pageNumber
		return hookErr
	}

	doc, err := p.Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	page, err := doc.Page(2)
	if err != nil {
		t.Fatalf("Page(2) error = %v", err)
	}

	if _, err := page.Rasterize(context.Background(), 1.0, 0); !errors.Is(err, hookErr) {
		t.Errorf("Rasterize() error = %v, want hook error", err)
	}
	if sawPage != 2 {
		t.Errorf("hook page = %d, want 2", sawPage)
	}
}

func TestRasterizeHonorsCancelledContext(t *testing.T) {
	doc, err := twoPageProvider().Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page(1) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := page.Rasterize(ctx, 1.0, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Rasterize() error = %v, want context.Canceled", err)
	}
}

func TestPixels(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want int
	}{
		{"whole", 612.0, 612},
		{"fractional rounds up", 611.2, 612},
		{"zero floors to one", 0, 1},
		{"negative floors to one", -4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pixels(tt.v); got != tt.want {
				t.Errorf("pixels(%v) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}
