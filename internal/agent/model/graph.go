package model

import (
	"github.com/cloudwego/eino/schema"
)

// Mode selects which path a query takes through the pipeline graph.
type Mode string

const (
	// ModeCounsel runs the counseling chat stage (and, when the session
	// has collected enough turns, the analysis stage after it).
	ModeCounsel Mode = "counsel"
	// ModeRecommend skips straight to recommendation from the stored
	// summary; taken when a preferred genre arrives after analysis.
	ModeRecommend Mode = "recommend"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Do not access AppState directly from outside handlers. For persistence,
//     use the repositories (conversation + session).
type AppState struct {
	ConversationID string
	Mode           Mode
	Session        SessionState      // snapshot loaded at query start
	History        []*schema.Message // mutated only inside Eino state handlers

	Summary        *PsychologicalSummary // set by the summary parser
	AnalysisReady  bool                  // counseling collected enough turns
	PreferredGenre string                // from input or stored session
	CounselorReply string                // closing counselor reply, prepended to the analysis report

	ToolCallCount        int  // maintained in handlers (reset/increment)
	ToolCallLimitReached bool // set when the tool call limit is exceeded
	ToolCallIDSeq        int  // synthesizes tool_call_id when the provider omits it

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// QueryInput represents one user turn handed to the pipeline. PreferredGenre
// is normally empty; it is set on the follow-up call after the analysis stage
// invited the user to pick a genre.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
	PreferredGenre string `json:"preferred_genre,omitempty"`
}
