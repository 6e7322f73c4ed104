package chat

import (
	"github.com/lexforge/counsel/internal/interfaces"
)

// windowHistory keeps the messages belonging to the most recent `pairs`
// user/assistant exchanges, dropping the oldest first. Each pair is two
// messages, so the window is the final pairs*2 entries.
func windowHistory(history []interfaces.Message, pairs int) []interfaces.Message {
	if pairs <= 0 || len(history) == 0 {
		return nil
	}

	limit := pairs * 2
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
