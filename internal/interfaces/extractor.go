package interfaces

import (
	"context"
)

// TextExtractor extracts readable text from an uploaded document.
// Implementations are selected by file extension before any bytes are
// processed; Supports reports whether a filename is handled at all.
type TextExtractor interface {
	// Extract returns the plain text content of the document bytes.
	// The filename is used to select the format-specific extraction path.
	Extract(ctx context.Context, filename string, data []byte) (string, error)

	// Supports reports whether the filename's extension is an accepted format.
	Supports(filename string) bool

	// SupportedExtensions lists the accepted extensions, e.g. ".pdf".
	SupportedExtensions() []string
}
