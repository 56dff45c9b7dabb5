//go:build !ocr

package scandoc

import (
	"context"

	"github.com/tsawler/clauseview/document"
)

// Provider is the stub used when the "ocr" build tag is not set; Open
// always fails with ErrOCRNotEnabled.
type Provider struct {
	Language string
}

func (p Provider) Open(ctx context.Context, data []byte) (document.Document, error) {
	return nil, ErrOCRNotEnabled
}
