package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mridul249/legalbot-backend/chat"
	"github.com/mridul249/legalbot-backend/llm"
	"github.com/mridul249/legalbot-backend/retrieval"
)

func TestBuildMessagesOrder(t *testing.T) {
	passages := []retrieval.Passage{
		{Text: "Article 1: refund within 14 days.", Score: 0.9},
		{Text: "Article 2: the trader bears return costs.", Score: 0.8},
	}
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "previous question"},
		{Role: llm.RoleAssistant, Content: "previous answer"},
	}

	messages := chat.BuildMessages(chat.SystemInstruction, passages, history, "current question")
	require.Len(t, messages, 5)

	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, chat.SystemInstruction, messages[0].Content)

	assert.Equal(t, llm.RoleSystem, messages[1].Role)
	assert.Equal(t, "Legal Context:\nArticle 1: refund within 14 days.\n\nArticle 2: the trader bears return costs.", messages[1].Content)

	assert.Equal(t, history[0], messages[2])
	assert.Equal(t, history[1], messages[3])

	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "current question"}, messages[4])
}

func TestBuildMessagesEmptyPassages(t *testing.T) {
	messages := chat.BuildMessages(chat.SystemInstruction, nil, nil, "question")
	require.Len(t, messages, 3)
	assert.Equal(t, "Legal Context:\n", messages[1].Content)
	assert.Equal(t, llm.RoleUser, messages[2].Role)
}

func TestBuildMessagesDoesNotMutateHistory(t *testing.T) {
	history := []llm.Message{{Role: llm.RoleUser, Content: "q"}}
	_ = chat.BuildMessages(chat.SystemInstruction, nil, history, "another")
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "q"}}, history)
}
