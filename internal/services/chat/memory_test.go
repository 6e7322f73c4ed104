package chat

import (
	"fmt"

	"github.com/lexforge/counsel/internal/interfaces"
)

// makeHistory builds n user/assistant pairs labelled 1..n
func makeHistory(n int) []interfaces.Message {
	history := make([]interfaces.Message, 0, n*2)
	for i := 1; i <= n; i++ {
		history = append(history,
			interfaces.Message{Role: "user", Content: fmt.Sprintf("user %d", i)},
			interfaces.Message{Role: "assistant", Content: fmt.Sprintf("assistant %d", i)},
		)
	}
	return history
}
