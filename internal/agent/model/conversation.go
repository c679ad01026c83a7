package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddMessage appends a message to the conversation history
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the conversation history for a conversation
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a conversation
	ClearHistory(ctx context.Context, conversationID string) error

	// GetMessageCount returns the number of messages in the conversation
	GetMessageCount(ctx context.Context, conversationID string) (int, error)
}

// SessionRepository persists the per-conversation pipeline state that used to
// live in ambient globals: turn counts, the analysis-done flag, the chosen
// genre and the stored summary. Every stage reads and writes through it, so
// stages stay independently testable.
type SessionRepository interface {
	LoadSession(ctx context.Context, conversationID string) (*SessionState, error)
	SaveSummary(ctx context.Context, conversationID string, summary PsychologicalSummary) error
	SetPreferredGenre(ctx context.Context, conversationID, genre string) error
	IncrementAssistantTurns(ctx context.Context, conversationID string) (int, error)
	ClearSession(ctx context.Context, conversationID string) error
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}

// SessionState is the explicit session object handed to each pipeline stage.
type SessionState struct {
	ConversationID string
	AssistantTurns int
	AnalysisDone   bool
	PreferredGenre string
	Summary        *PsychologicalSummary
}
