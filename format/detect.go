// Package format detects the file format of document bytes before any
// parsing or rasterization is attempted.
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format represents a detected document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Microsoft Word (.docx) document. DOCX is detected
	// so it can be reported as unsupported; it is never processed.
	DOCX
	// PNG, JPEG and TIFF indicate scanned page images, served through
	// the OCR-backed provider.
	PNG
	JPEG
	TIFF
)

// ErrUnsupported reports bytes the viewer cannot open. It is returned
// before any rasterization work starts.
var ErrUnsupported = errors.New("unsupported document format")

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case DOCX:
		return "DOCX"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case DOCX:
		return ".docx"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tiff"
	default:
		return ""
	}
}

// Supported reports whether the viewer has a provider for the format.
// Scanned images are supported through the OCR provider; whether OCR
// was compiled in is a runtime concern, not a format one.
func (f Format) Supported() bool {
	switch f {
	case PDF, PNG, JPEG, TIFF:
		return true
	}
	return false
}

// ScannedImage reports whether the format is a page image that needs
// OCR to recover a text layout.
func (f Format) ScannedImage() bool {
	switch f {
	case PNG, JPEG, TIFF:
		return true
	}
	return false
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".tif", ".tiff":
		return TIFF
	default:
		return Unknown
	}
}

// DetectBytes checks content magic bytes to determine format. This is
// more reliable than extension-based detection and distinguishes DOCX
// from other ZIP archives.
func DetectBytes(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	// PDF magic: %PDF
	if data[0] == '%' && data[1] == 'P' && data[2] == 'D' && data[3] == 'F' {
		return PDF
	}

	// ZIP magic (DOCX is a ZIP archive): PK\x03\x04
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return detectZIPFormat(data)
	}

	if len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}) {
		return PNG
	}

	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return JPEG
	}

	// TIFF: little-endian II*\0 or big-endian MM\0*.
	if bytes.Equal(data[:4], []byte{'I', 'I', 0x2A, 0x00}) || bytes.Equal(data[:4], []byte{'M', 'M', 0x00, 0x2A}) {
		return TIFF
	}

	return Unknown
}

// detectZIPFormat inspects a ZIP archive for the Word document marker.
func detectZIPFormat(data []byte) Format {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX
		}
	}

	return Unknown
}

// Check returns nil when data is a supported format, and an error
// wrapping ErrUnsupported that names the detected format otherwise.
func Check(data []byte) error {
	f := DetectBytes(data)
	if f.Supported() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, f)
}
