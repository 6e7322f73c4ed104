package chat

import (
	"fmt"
	"strings"

	"github.com/lexforge/counsel/internal/vectorindex"
)

// systemPromptTemplate is the instruction block for the answer completion.
// The formatting rules are a presentation contract: structured Markdown,
// bold key legal terms, lists for enumerations.
const systemPromptTemplate = `You are an expert legal chatbot. Your primary goal is to provide clear, accurate, and well-structured information.

**Instructions:**
- Analyze the user's question and the provided context carefully.
- Structure your answer using Markdown for readability.
- Use numbered or bulleted lists for enumerations (like legal clauses or steps).
- Use **bold text** to highlight key legal terms, parties (like "landlord" and "tenant"), and important concepts.
- Keep your tone professional and direct.

CONTEXT:
%s`

// followUpPromptTemplate asks for exactly four short related questions as a
// bare numbered list.
const followUpPromptTemplate = `You are an Indian Penal Code (IPC) legal assistant.
Based on the user's last question and your answer, suggest 4 short, clear related legal questions
that the user might want to ask next.
Only output the questions as a numbered list, without extra text.

User Question: %s
Your Answer: %s`

// buildSystemPrompt renders the instruction block with the retrieved context
func buildSystemPrompt(retrieved []vectorindex.Result) string {
	var context strings.Builder
	for i, result := range retrieved {
		if i > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(result.Chunk.Text)
	}
	return fmt.Sprintf(systemPromptTemplate, context.String())
}

// buildFollowUpPrompt renders the follow-up suggestion request
func buildFollowUpPrompt(question, answer string) string {
	return fmt.Sprintf(followUpPromptTemplate, question, answer)
}
