package interfaces

import (
	"context"
)

// VisionService answers natural-language questions about an image.
type VisionService interface {
	// AnswerImage generates a response to the prompt grounded in the supplied
	// image bytes. The mimeType identifies the image format, e.g. "image/png".
	AnswerImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)

	// ModelName returns the provider model identifier used for vision calls.
	ModelName() string
}
