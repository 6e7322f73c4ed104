package interfaces

import (
	"context"
)

// TranscriptionService converts recorded speech to text.
type TranscriptionService interface {
	// Transcribe returns the spoken text contained in the audio bytes.
	// The mimeType identifies the audio container, e.g. "audio/wav".
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
