// -----------------------------------------------------------------------
// Text Extraction Service - Plain text from uploaded documents
// -----------------------------------------------------------------------

package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/lexforge/counsel/internal/interfaces"
)

// ErrUnsupportedFormat indicates the uploaded file's extension is not in the
// accepted set. Raised before any bytes are processed.
var ErrUnsupportedFormat = errors.New("file type not supported")

// supportedExtensions is the fixed ingestion allow-list
var supportedExtensions = []string{".txt", ".pdf", ".docx"}

// Service implements the TextExtractor interface, dispatching on file
// extension to a format-specific extraction path.
type Service struct {
	logger arbor.ILogger
	pdf    *pdfExtractor
}

// Compile-time interface assertion
var _ interfaces.TextExtractor = (*Service)(nil)

// NewService creates a new text extraction service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		pdf:    newPDFExtractor(logger),
	}
}

// Supports reports whether the filename's extension is an accepted format
func (s *Service) Supports(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range supportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// SupportedExtensions lists the accepted extensions
func (s *Service) SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// Extract returns the plain text content of the document bytes. The file
// extension selects the extraction path; unsupported extensions fail before
// any content is read.
func (s *Service) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt":
		return s.extractPlainText(data)
	case ".pdf":
		return s.pdf.extract(ctx, data)
	case ".docx":
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func (s *Service) extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}
	return string(data), nil
}
