package ingest

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument indicates the document produced no text to chunk
var ErrEmptyDocument = errors.New("document contains no extractable text")

// Chunk splits text into overlapping rune windows. Each chunk holds at most
// maxLen runes; every chunk after the first repeats the previous chunk's
// final overlap runes. Splitting on runes keeps multi-byte characters whole.
//
// Dropping each non-first chunk's overlapping prefix and concatenating the
// remainder reproduces the input exactly.
func Chunk(text string, maxLen, overlap int) ([]string, error) {
	if text == "" {
		return nil, ErrEmptyDocument
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("chunk size must be positive (got %d)", maxLen)
	}
	if overlap < 0 || overlap >= maxLen {
		return nil, fmt.Errorf("overlap must be in [0, chunk size) (got %d, chunk size %d)", overlap, maxLen)
	}

	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}, nil
	}

	step := maxLen - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; ; start += step {
		end := start + maxLen
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
