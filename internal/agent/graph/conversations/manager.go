package conversations

import (
	"context"
	"strings"

	"github.com/MinseoYoo/page-mind/internal/agent/model"

	"github.com/cloudwego/eino/schema"
)

type MessagesManager struct {
	conversationRepo model.ConversationRepository
	contextMaxTurns  int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.SessionConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		contextMaxTurns:  config.Counsel.ContextMaxTurns,
	}
}

// RecordUserMessage appends the user's message to the persisted history and
// returns the updated history window used as counselor context.
func (cm *MessagesManager) RecordUserMessage(ctx context.Context, conversationID string, query string) ([]*schema.Message, error) {
	userMsg := schema.UserMessage(query)
	if err := cm.conversationRepo.AddMessage(ctx, conversationID, userMsg); err != nil {
		return nil, err
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return trimTail(history.Messages, cm.contextMaxTurns), nil
}

// BuildCounselContext prepends the system prompt to the recent history window.
func (cm *MessagesManager) BuildCounselContext(systemPrompt string, recent []*schema.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(recent)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, recent...)
	return messages
}

// BuildTranscript renders the full stored conversation as a plain text
// transcript for the analysis stage.
func (cm *MessagesManager) BuildTranscript(ctx context.Context, conversationID string) (string, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}

	var transcript strings.Builder
	transcript.WriteString("<conversation_transcript>\n")
	for _, msg := range history.Messages {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			transcript.WriteString("내담자: " + msg.Content + "\n")
		case schema.Assistant:
			transcript.WriteString("상담사: " + msg.Content + "\n")
		}
	}
	transcript.WriteString("</conversation_transcript>")
	return transcript.String(), nil
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
