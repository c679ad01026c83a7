package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	logx "github.com/MinseoYoo/page-mind/pkg/logger"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/MinseoYoo/page-mind/internal/agent/graph/conversations"
	"github.com/MinseoYoo/page-mind/internal/agent/graph/nodes"
	"github.com/MinseoYoo/page-mind/internal/agent/graph/observers"
	"github.com/MinseoYoo/page-mind/internal/agent/graph/tools"
	"github.com/MinseoYoo/page-mind/internal/agent/model"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Config holds everything needed to compose the full counseling pipeline
// end-to-end. This is a convenience layer over GraphConfig that also
// constructs ChatModels and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	CounselorModel   model.CounselorModelConfig
	AnalysisModel    model.AnalysisModelConfig
	Session          model.SessionConfig
	ConversationRepo model.ConversationRepository
	SessionRepo      model.SessionRepository
	Recommender      nodes.Recommender
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels        *nodes.ChatModels
	MessagesManager   *conversations.MessagesManager
	SessionRepo       model.SessionRepository
	Recommender       nodes.Recommender
	MinAssistantTurns int
	ToolMaxCalls      int
}

// GraphBuilder handles the construction of the counseling pipeline graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	// Best-effort print Extra (e.g., usage_cost) if present
	if len(out.Extra) > 0 {
		if b, err := json.MarshalIndent(out.Extra, "", "  "); err == nil {
			logx.Debug().RawJSON("extra", b).Msg("graph output extra")
		}
	}
	return out.Content, nil
}

// BuildCounselingGraph composes ChatModels, MessagesManager, builds the graph, and returns a Runner.
func BuildCounselingGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.SessionRepo == nil {
		return nil, fmt.Errorf("session repo is nil")
	}
	if cfg.Recommender == nil {
		return nil, fmt.Errorf("recommender is nil")
	}

	// Create chat models
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		CounselorConfig: &cfg.CounselorModel,
		AnalysisConfig:  &cfg.AnalysisModel,
	})
	if err != nil {
		return nil, err
	}

	// Create messages manager
	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Session)

	// Build runnable graph
	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:        cms,
		MessagesManager:   mm,
		SessionRepo:       cfg.SessionRepo,
		Recommender:       cfg.Recommender,
		MinAssistantTurns: cfg.Session.Counsel.MinAssistantTurns,
		ToolMaxCalls:      cfg.Session.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Counseling graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled pipeline graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// Basic config validation
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Counselor == nil ||
		config.ChatModels.Analysis == nil || config.ChatModels.Synthesis == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.SessionRepo == nil {
		return nil, fmt.Errorf("session repo is nil")
	}
	if config.Recommender == nil {
		return nil, fmt.Errorf("recommender is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools configures the recorder tools and binds them to the analysis model
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	analysisTools := tools.GetAnalysisTools()
	toolInfos, err := tools.GetToolInfos(ctx, analysisTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindToolsToAnalysisModel(ctx, toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to analysis model")
		return fmt.Errorf("failed to bind tools to analysis model: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               analysisTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated or malformed tool calls (e.g., empty name)
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				// keep original if not JSON
				return arguments, nil
			}

			// Recorder tools only carry strings and string arrays; trim both.
			for k, v := range m {
				switch vv := v.(type) {
				case string:
					m[k] = strings.TrimSpace(vv)
				case []any:
					cleaned := make([]any, 0, len(vv))
					for _, item := range vv {
						if s, ok := item.(string); ok {
							if s = strings.TrimSpace(s); s != "" {
								cleaned = append(cleaned, s)
							}
							continue
						}
						cleaned = append(cleaned, item)
					}
					m[k] = cleaned
				}
			}

			out, err := json.Marshal(m)
			if err != nil {
				// fallback to original
				return arguments, nil
			}
			return string(out), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)

	return nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeInputLoader,
		nodes.NewInputLoaderNode(b.config.MessagesManager),
		compose.WithStatePreHandler(nodes.NewInputLoaderPreHandler(b.config.SessionRepo)),
	)

	b.graph.AddChatModelNode(nodes.NodeCounselorChatModel,
		nodes.NewCounselorChatModelNode(b.config.ChatModels.Counselor),
		compose.WithStatePreHandler(nodes.NewCounselorChatModelPreHandler(b.config.MinAssistantTurns)),
		compose.WithStatePostHandler(nodes.NewCounselorChatModelPostHandler(
			b.config.MessagesManager, b.config.SessionRepo, b.config.MinAssistantTurns, b.config.ChatModels.CounselorModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeAnalysisAssembler,
		nodes.NewAnalysisAssemblerNode(b.config.MessagesManager),
	)

	b.graph.AddChatModelNode(nodes.NodeAnalysisChatModel,
		nodes.NewAnalysisChatModelNode(b.config.ChatModels.Analysis),
		compose.WithStatePreHandler(nodes.NewAnalysisChatModelPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewAnalysisChatModelPostHandler(b.config.ChatModels.AnalysisModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeSynthesisAssembler,
		nodes.NewSynthesisAssemblerNode(),
	)

	b.graph.AddChatModelNode(nodes.NodeSynthesisChatModel,
		nodes.NewSynthesisChatModelNode(b.config.ChatModels.Synthesis),
		compose.WithStatePostHandler(nodes.NewSynthesisChatModelPostHandler(b.config.ChatModels.AnalysisModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeSummaryParser,
		nodes.NewSummaryParserNode(),
		compose.WithStatePostHandler(nodes.NewSummaryParserPostHandler(b.config.SessionRepo)),
	)

	b.graph.AddLambdaNode(nodes.NodeAnalysisReport,
		nodes.NewAnalysisReportNode(b.config.MessagesManager),
	)

	b.graph.AddLambdaNode(nodes.NodeSummaryLoader,
		nodes.NewSummaryLoaderNode(b.config.SessionRepo),
	)

	b.graph.AddLambdaNode(nodes.NodeRecommender,
		nodes.NewRecommenderNode(b.config.Recommender, b.config.MessagesManager),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputLoader},
		{nodes.NodeAnalysisAssembler, nodes.NodeAnalysisChatModel},
		{nodes.NodeToolExecutor, nodes.NodeAnalysisChatModel},
		{nodes.NodeSynthesisAssembler, nodes.NodeSynthesisChatModel},
		{nodes.NodeSynthesisChatModel, nodes.NodeSummaryParser},
		{nodes.NodeSummaryLoader, nodes.NodeRecommender},
		{nodes.NodeAnalysisReport, compose.END},
		{nodes.NodeRecommender, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	modeBranch := compose.NewGraphBranch(
		nodes.NewModeCondition(),
		map[string]bool{
			nodes.NodeCounselorChatModel: true,
			nodes.NodeSummaryLoader:      true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeInputLoader, modeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding mode branch")
		return fmt.Errorf("error adding mode branch: %w", err)
	}

	gateBranch := compose.NewGraphBranch(
		nodes.NewAnalysisGateCondition(),
		map[string]bool{
			nodes.NodeAnalysisAssembler: true,
			compose.END:                 true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeCounselorChatModel, gateBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding analysis gate branch")
		return fmt.Errorf("error adding analysis gate branch: %w", err)
	}

	toolBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor:       true,
			nodes.NodeSynthesisAssembler: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeAnalysisChatModel, toolBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool branch")
		return fmt.Errorf("error adding tool branch: %w", err)
	}

	genreBranch := compose.NewGraphBranch(
		nodes.NewGenreCondition(),
		map[string]bool{
			nodes.NodeRecommender:    true,
			nodes.NodeAnalysisReport: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeSummaryParser, genreBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding genre branch")
		return fmt.Errorf("error adding genre branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
