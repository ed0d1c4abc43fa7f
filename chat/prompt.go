package chat

import (
	"strings"

	"github.com/mridul249/legalbot-backend/llm"
	"github.com/mridul249/legalbot-backend/retrieval"
)

// SystemInstruction is the assistant persona sent as the first message of
// every conversation.
const SystemInstruction = "You are a helpful legal assistant specialized in consumer rights. Use the provided legal context to answer the user's question."

// BuildMessages assembles the exact conversation the completion provider
// receives: the persona, a system message carrying the retrieved passages,
// the caller's history verbatim, and finally the question as a user message.
// With no passages the context message carries an empty body rather than
// fabricated content. No truncation happens here; input-size limits are the
// provider's constraint to report.
func BuildMessages(instruction string, passages []retrieval.Passage, history []llm.Message, question string) []llm.Message {
	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}
	context := strings.Join(texts, "\n\n")

	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages,
		llm.Message{Role: llm.RoleSystem, Content: instruction},
		llm.Message{Role: llm.RoleSystem, Content: "Legal Context:\n" + context},
	)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	return messages
}
