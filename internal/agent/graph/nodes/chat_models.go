package nodes

import (
	"context"
	"fmt"

	logx "github.com/MinseoYoo/page-mind/pkg/logger"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/MinseoYoo/page-mind/internal/agent/model"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey          string
	BaseURL         string
	CounselorConfig *model.CounselorModelConfig
	AnalysisConfig  *model.AnalysisModelConfig
}

// ChatModels holds the chat models for the three LLM stages. Analysis carries
// the recorder tools; Synthesis shares the analysis model settings but stays
// unbound so its output is the JSON summary, never another tool call.
type ChatModels struct {
	Counselor          *gemini.ChatModel
	Analysis           *gemini.ChatModel
	Synthesis          *gemini.ChatModel
	CounselorModelName string
	AnalysisModelName  string
}

// NewChatModels creates the counselor, analysis and synthesis chat models.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	counselor, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.CounselorConfig.Model,
		Temperature: &config.CounselorConfig.Temperature,
		MaxTokens:   &config.CounselorConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating counselor model")
		return nil, fmt.Errorf("error creating counselor model: %w", err)
	}

	analysis, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.AnalysisConfig.Model,
		Temperature: &config.AnalysisConfig.Temperature,
		MaxTokens:   &config.AnalysisConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating analysis model")
		return nil, fmt.Errorf("error creating analysis model: %w", err)
	}

	synthesis, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.AnalysisConfig.Model,
		Temperature: &config.AnalysisConfig.Temperature,
		MaxTokens:   &config.AnalysisConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating synthesis model")
		return nil, fmt.Errorf("error creating synthesis model: %w", err)
	}

	return &ChatModels{
		Counselor:          counselor,
		Analysis:           analysis,
		Synthesis:          synthesis,
		CounselorModelName: config.CounselorConfig.Model,
		AnalysisModelName:  config.AnalysisConfig.Model,
	}, nil
}

// BindToolsToAnalysisModel binds the recorder tools to the analysis chat model
func (cm *ChatModels) BindToolsToAnalysisModel(ctx context.Context, tools []*schema.ToolInfo) error {
	err := cm.Analysis.BindTools(tools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Msg("Successfully bound tools to analysis model")
	return nil
}

// NewCounselorChatModelNode creates a wrapper for the counselor chat model to be used as a node
func NewCounselorChatModelNode(chatModel *gemini.ChatModel) *gemini.ChatModel {
	return chatModel
}

// NewAnalysisChatModelNode creates a wrapper for the analysis chat model to be used as a node
func NewAnalysisChatModelNode(chatModel *gemini.ChatModel) *gemini.ChatModel {
	return chatModel
}

// NewSynthesisChatModelNode creates a wrapper for the synthesis chat model to be used as a node
func NewSynthesisChatModelNode(chatModel *gemini.ChatModel) *gemini.ChatModel {
	return chatModel
}
