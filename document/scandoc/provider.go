//go:build ocr

package scandoc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/clauseview/document"
)

// Provider opens scanned page images through Tesseract. Language is a
// "+"-separated Tesseract language list; empty means English.
type Provider struct {
	Language string
}

// Open decodes the image, recognizes word boxes and returns a one-page
// document over them.
func (p Provider) Open(ctx context.Context, data []byte) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if p.Language != "" {
		if err := client.SetLanguage(strings.Split(p.Language, "+")...); err != nil {
			return nil, fmt.Errorf("set OCR language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set OCR image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{Text: b.Word, Box: b.Box})
	}
	return documentFromImage(img, words), nil
}
