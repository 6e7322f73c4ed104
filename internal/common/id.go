package common

import (
	"fmt"

	"github.com/google/uuid"
)

// NewDocumentID generates a unique identifier for an uploaded document
func NewDocumentID() string {
	return fmt.Sprintf("doc_%s", uuid.New().String())
}

// NewChunkID generates a unique identifier for an indexed chunk
func NewChunkID() string {
	return fmt.Sprintf("chunk_%s", uuid.New().String())
}
