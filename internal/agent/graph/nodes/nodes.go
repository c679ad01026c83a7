package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/MinseoYoo/page-mind/internal/agent/graph/conversations"
	"github.com/MinseoYoo/page-mind/internal/agent/graph/parsers"
	"github.com/MinseoYoo/page-mind/internal/agent/graph/prompts"
	"github.com/MinseoYoo/page-mind/internal/agent/model"
	logx "github.com/MinseoYoo/page-mind/pkg/logger"
)

// Node names used when wiring the pipeline graph.
const (
	NodeInputLoader        = "input_loader"
	NodeCounselorChatModel = "counselor_chat_model"
	NodeAnalysisAssembler  = "analysis_assembler"
	NodeAnalysisChatModel  = "analysis_chat_model"
	NodeToolExecutor       = "analysis_tool_executor"
	NodeSynthesisAssembler = "synthesis_assembler"
	NodeSynthesisChatModel = "synthesis_chat_model"
	NodeSummaryParser      = "summary_parser"
	NodeAnalysisReport     = "analysis_report"
	NodeSummaryLoader      = "summary_loader"
	NodeRecommender        = "recommender"
)

// Recommender turns a psychological summary into ranked book picks.
type Recommender interface {
	Recommend(ctx context.Context, summary model.PsychologicalSummary) ([]model.BookRecommendation, error)
}

// NewInputLoaderPreHandler loads the session snapshot, resets per-query
// counters and decides which path this turn takes through the graph.
func NewInputLoaderPreHandler(sessionRepo model.SessionRepository) func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		if s.ConversationID == "" {
			s.ConversationID = in.ConversationID
		}
		// Reset tool call counter and limit flag for each new query
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		s.History = nil
		s.AnalysisReady = false
		s.CounselorReply = ""

		session, err := sessionRepo.LoadSession(ctx, in.ConversationID)
		if err != nil {
			return in, fmt.Errorf("load session: %w", err)
		}
		s.Session = *session
		s.Summary = session.Summary

		s.PreferredGenre = strings.TrimSpace(in.PreferredGenre)
		if s.PreferredGenre == "" {
			s.PreferredGenre = session.PreferredGenre
		}

		// A genre pick after a finished analysis goes straight to
		// recommendation; everything else is a counseling turn.
		if strings.TrimSpace(in.PreferredGenre) != "" && session.AnalysisDone {
			s.Mode = model.ModeRecommend
		} else {
			s.Mode = model.ModeCounsel
		}

		logx.Debug().
			Str("conversation_id", s.ConversationID).
			Str("mode", string(s.Mode)).
			Int("assistant_turns", session.AssistantTurns).
			Msg("Session loaded")
		return in, nil
	}
}

// NewInputLoaderNode records the user turn and assembles the counselor
// context. In recommend mode it passes through empty; the summary loader
// works from state alone.
func NewInputLoaderNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		var mode model.Mode
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			mode = state.Mode
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if mode == model.ModeRecommend {
			return []*schema.Message{}, nil
		}

		recent, err := mm.RecordUserMessage(ctx, input.ConversationID, input.Query)
		if err != nil {
			return nil, fmt.Errorf("record user message: %w", err)
		}

		systemPrompt, err := prompts.RenderCounselorSystem(ctx)
		if err != nil {
			return nil, fmt.Errorf("render counselor system prompt: %w", err)
		}

		return mm.BuildCounselContext(systemPrompt, recent), nil
	})
}

// NewModeCondition routes a counseling turn to the counselor model and a
// genre pick to the stored-summary path.
func NewModeCondition() func(context.Context, []*schema.Message) (string, error) {
	return func(ctx context.Context, _ []*schema.Message) (string, error) {
		var mode model.Mode
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			mode = state.Mode
			return nil
		})

		if mode == model.ModeRecommend {
			logx.Debug().Msg("Routing to summary loader - genre selected")
			return NodeSummaryLoader, nil
		}
		return NodeCounselorChatModel, nil
	}
}

// NewCounselorChatModelPreHandler injects the wrap-up notice on the turn that
// will trigger the analysis stage.
func NewCounselorChatModelPreHandler(minAssistantTurns int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		closing := !state.Session.AnalysisDone && state.Session.AssistantTurns+1 >= minAssistantTurns
		if closing {
			in = append(in, schema.SystemMessage(prompts.ClosingNotice))
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Msg("Closing turn - counselor asked to wrap up")
		}
		return in, nil
	}
}

// NewCounselorChatModelPostHandler persists the counselor reply, advances the
// session turn counter and decides whether the analysis stage runs next.
func NewCounselorChatModelPostHandler(
	mm *conversations.MessagesManager,
	sessionRepo model.SessionRepository,
	minAssistantTurns int,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		applyUsageCost(out, state, modelName, NodeCounselorChatModel)

		if out == nil || strings.TrimSpace(out.Content) == "" {
			return out, nil
		}
		state.CounselorReply = out.Content

		if err := mm.SaveResponse(ctx, state.ConversationID, out.Content); err != nil {
			logx.Error().
				Str("conversation_id", state.ConversationID).
				Err(err).
				Msg("Error saving counselor response")
		}

		turns, err := sessionRepo.IncrementAssistantTurns(ctx, state.ConversationID)
		if err != nil {
			logx.Error().
				Str("conversation_id", state.ConversationID).
				Err(err).
				Msg("Error incrementing assistant turns")
			turns = state.Session.AssistantTurns + 1
		}
		state.Session.AssistantTurns = turns
		state.AnalysisReady = !state.Session.AnalysisDone && turns >= minAssistantTurns

		logx.Debug().
			Str("conversation_id", state.ConversationID).
			Int("assistant_turns", turns).
			Bool("analysis_ready", state.AnalysisReady).
			Msg("Counselor turn complete")
		return out, nil
	}
}

// NewAnalysisGateCondition routes to the analysis stage once the session has
// collected enough counseling turns; otherwise the counselor reply ends the
// graph run.
func NewAnalysisGateCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, _ *schema.Message) (string, error) {
		var ready bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			ready = state.AnalysisReady
			return nil
		})

		if ready {
			logx.Debug().Msg("Routing to analysis stage")
			return NodeAnalysisAssembler, nil
		}
		return compose.END, nil
	}
}

// NewAnalysisAssemblerNode builds the analysis context: the step-by-step
// system prompt plus the full conversation transcript.
func NewAnalysisAssemblerNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) ([]*schema.Message, error) {
		var conversationID string
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			conversationID = state.ConversationID
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		systemPrompt, err := prompts.RenderAnalysisSystem(ctx)
		if err != nil {
			return nil, fmt.Errorf("render analysis system prompt: %w", err)
		}

		transcript, err := mm.BuildTranscript(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("build transcript: %w", err)
		}

		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(transcript + "\n\n위 대화를 도구를 사용하여 단계적으로 분석하세요."),
		}, nil
	})
}

// NewAnalysisChatModelPreHandler creates the pre-handler for the analysis model
func NewAnalysisChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		// Heuristic fix for Gemini: ensure tool results carry tool_call_id
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					id := msg.ToolCalls[0].ID
					if strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Stop calling tools and reply with the text \"분석 완료\" so the recorded steps can be synthesized.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		logx.Debug().Msg("Analysis model thinking...")

		return state.History, nil
	}
}

// NewAnalysisChatModelPostHandler creates the post-handler for the analysis model
func NewAnalysisChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		applyUsageCost(out, state, modelName, NodeAnalysisChatModel)

		// Normalize tool calls: the provider may omit tool_call IDs.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if out != nil && len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Recording analysis step")
		} else {
			logx.Debug().Msg("Analysis recording complete")
		}
		return out, nil
	}
}

// NewToolExecutorCondition routes recorder calls to the tool executor and
// everything else onward to synthesis.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached - routing to synthesis")
			return NodeSynthesisAssembler, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		logx.Debug().Msg("Analysis steps recorded - routing to synthesis")
		return NodeSynthesisAssembler, nil
	}
}

// NewToolExecutorPreHandler creates the pre-handler for the ToolExecutor node
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("conversation_id", state.ConversationID).
			Msg("Recorder tool execution attempt")

		if exceeded {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", maxToolCalls).
				Str("conversation_id", state.ConversationID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}

// NewSynthesisAssemblerNode folds the recorded analysis steps into a plain
// text digest for the synthesis model. The digest carries the tool call
// arguments, which hold the actual analysis content.
func NewSynthesisAssemblerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) ([]*schema.Message, error) {
		var history []*schema.Message
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			history = state.History
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		systemPrompt, err := prompts.RenderSynthesisSystem(ctx)
		if err != nil {
			return nil, fmt.Errorf("render synthesis system prompt: %w", err)
		}

		digest := buildAnalysisDigest(history)
		if digest == "" {
			return nil, fmt.Errorf("no recorded analysis steps to synthesize")
		}

		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(digest + "\n\n위 분석 기록을 종합하여 JSON 요약을 출력하세요."),
		}, nil
	})
}

// buildAnalysisDigest renders each recorded tool call as a named section.
func buildAnalysisDigest(history []*schema.Message) string {
	var digest strings.Builder
	for _, msg := range history {
		if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
			continue
		}
		for _, tc := range msg.ToolCalls {
			if strings.TrimSpace(tc.Function.Arguments) == "" {
				continue
			}
			digest.WriteString("### ")
			digest.WriteString(tc.Function.Name)
			digest.WriteString("\n")
			digest.WriteString(tc.Function.Arguments)
			digest.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(digest.String())
}

// NewSynthesisChatModelPostHandler creates the post-handler for the synthesis model
func NewSynthesisChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		applyUsageCost(out, state, modelName, NodeSynthesisChatModel)
		logx.Debug().Msg("Synthesis complete")
		return out, nil
	}
}

// NewSummaryParserNode parses the synthesis output into the structured summary.
func NewSummaryParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (*model.PsychologicalSummary, error) {
		summary, err := parsers.ParseSummary(resp.Content)
		if err != nil {
			logx.Error().Err(err).Msg("Error parsing psychological summary")
			return nil, err
		}
		return summary, nil
	})
}

// NewSummaryParserPostHandler stores the parsed summary in state and persists
// it to the session.
func NewSummaryParserPostHandler(sessionRepo model.SessionRepository) func(context.Context, *model.PsychologicalSummary, *model.AppState) (*model.PsychologicalSummary, error) {
	return func(ctx context.Context, out *model.PsychologicalSummary, state *model.AppState) (*model.PsychologicalSummary, error) {
		state.Summary = out
		state.Session.AnalysisDone = true

		if err := sessionRepo.SaveSummary(ctx, state.ConversationID, *out); err != nil {
			logx.Error().
				Str("conversation_id", state.ConversationID).
				Err(err).
				Msg("Error persisting psychological summary")
		}
		return out, nil
	}
}

// NewGenreCondition routes directly to recommendation when the user already
// picked a genre; otherwise the analysis report invites them to choose one.
func NewGenreCondition() func(context.Context, *model.PsychologicalSummary) (string, error) {
	return func(ctx context.Context, _ *model.PsychologicalSummary) (string, error) {
		var genre string
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			genre = state.PreferredGenre
			return nil
		})

		if genre != "" {
			logx.Debug().Str("genre", genre).Msg("Genre already chosen - routing to recommender")
			return NodeRecommender, nil
		}
		return NodeAnalysisReport, nil
	}
}

// NewSummaryLoaderNode serves the recommend path: it pulls the stored summary
// out of the session and persists the freshly chosen genre.
func NewSummaryLoaderNode(sessionRepo model.SessionRepository) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ []*schema.Message) (*model.PsychologicalSummary, error) {
		var (
			conversationID string
			genre          string
			summary        *model.PsychologicalSummary
		)
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			conversationID = state.ConversationID
			genre = state.PreferredGenre
			summary = state.Summary
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if summary == nil {
			return nil, fmt.Errorf("no stored analysis for conversation %s", conversationID)
		}

		if genre != "" {
			if err := sessionRepo.SetPreferredGenre(ctx, conversationID, genre); err != nil {
				logx.Error().
					Str("conversation_id", conversationID).
					Err(err).
					Msg("Error persisting preferred genre")
			}
		}

		return summary, nil
	})
}

// NewRecommenderNode calls the recommendation service and formats the ranked
// books into the final reply.
func NewRecommenderNode(rec Recommender, mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, summary *model.PsychologicalSummary) (*schema.Message, error) {
		var (
			conversationID string
			genre          string
		)
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			conversationID = state.ConversationID
			genre = state.PreferredGenre
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		effective := *summary
		if genre != "" {
			effective.Genre = genre
		}

		books, err := rec.Recommend(ctx, effective)
		if err != nil {
			logx.Error().
				Str("conversation_id", conversationID).
				Err(err).
				Msg("Error recommending books")
			return nil, err
		}

		content := FormatRecommendations(effective, books)
		if err := mm.SaveResponse(ctx, conversationID, content); err != nil {
			logx.Error().
				Str("conversation_id", conversationID).
				Err(err).
				Msg("Error saving recommendation response")
		}

		out := schema.AssistantMessage(content, nil)
		out.Extra = map[string]any{
			"counseling_result": model.CounselingResult{
				Summary:     effective,
				Books:       books,
				GeneratedAt: time.Now(),
			},
		}
		return out, nil
	})
}

// NewAnalysisReportNode formats the summary for the user and invites a genre
// choice. The counselor's closing reply leads the report so the conversation
// reads as one message.
func NewAnalysisReportNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, summary *model.PsychologicalSummary) (*schema.Message, error) {
		var (
			conversationID string
			closingReply   string
		)
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			conversationID = state.ConversationID
			closingReply = state.CounselorReply
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		content := FormatAnalysisReport(closingReply, summary)
		if err := mm.SaveResponse(ctx, conversationID, content); err != nil {
			logx.Error().
				Str("conversation_id", conversationID).
				Err(err).
				Msg("Error saving analysis report")
		}
		return schema.AssistantMessage(content, nil), nil
	})
}
