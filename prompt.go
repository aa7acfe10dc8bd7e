package lectern

import (
	"fmt"
	"strings"
)

// System prompts for the three answer modes. The grounded prompt constrains
// the model to retrieved evidence; the fallback prompt forces an explicit
// disclaimer so ungrounded answers are always labeled downstream.
const (
	SystemPromptGrounded = `You are a university Teaching Assistant chatbot. Answer using only the retrieved sources. If the answer is not in the sources, say you don't know. Quote key snippets and add citations like [Title, pp. x-y]. Be concise and precise.`

	SystemPromptFallback = `You are a teaching assistant. You did not find any useful information in the course materials related to this question.

Answer using your general knowledge, but you MUST start your response with a clear disclaimer:

"Note: I couldn't find relevant information in the uploaded course materials, so this answer is based on general knowledge and may not reflect your specific course policies or content. Please verify with your instructor or course materials."

Then provide a helpful answer based on general educational knowledge. Be concise and helpful.`

	SystemPromptChitchat = `You are a friendly and helpful university Teaching Assistant. The student is having a casual conversation with you (greeting, farewell, or thanks). Respond warmly and naturally, and gently guide them toward asking questions about their course materials if appropriate. Be concise, friendly, and professional.`
)

// BuildGroundedPrompt formats the user message for grounded generation:
// the original question, a ranked [n]-labelled context block with per-chunk
// citations, and the usage instructions.
func BuildGroundedPrompt(question string, results []RetrievedResult) string {
	var b strings.Builder
	b.WriteString("QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nTOP CONTEXT (ranked):\n")
	b.WriteString(ContextBlock(results))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("- Use only the provided context.\n")
	b.WriteString("- When stating a fact, add a citation like [Title, pp. x-y].\n")
	b.WriteString(`- If context is insufficient, answer: "I don't know based on the provided materials."` + "\n")
	b.WriteString("- Start with a one-sentence direct answer, then briefly justify with 1-3 quotes.")
	return b.String()
}

// ContextBlock renders retrieved results as numbered, citation-tagged
// passages for embedding in a prompt.
func ContextBlock(results []RetrievedResult) string {
	if len(results) == 0 {
		return "(no context)"
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n%s", i+1, FormatCitation(r.Chunk.Meta), r.Chunk.Text)
	}
	return b.String()
}

// promptFor returns the system and user messages for the given mode.
func promptFor(mode Mode, question string, results []RetrievedResult) []ChatMessage {
	switch mode {
	case ModeGrounded:
		return []ChatMessage{
			{Role: "system", Content: SystemPromptGrounded},
			{Role: "user", Content: BuildGroundedPrompt(question, results)},
		}
	case ModeChitchat:
		return []ChatMessage{
			{Role: "system", Content: SystemPromptChitchat},
			{Role: "user", Content: question},
		}
	default:
		// Fallback carries the bare question, no retrieved context.
		return []ChatMessage{
			{Role: "system", Content: SystemPromptFallback},
			{Role: "user", Content: question},
		}
	}
}
