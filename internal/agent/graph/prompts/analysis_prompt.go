package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/MinseoYoo/page-mind/internal/agent/graph/tools"
)

//go:embed template/analysis_prompt.txt
var analysisSystemPrompt string

//go:embed template/synthesis_prompt.txt
var synthesisSystemPrompt string

// RenderAnalysisSystem renders the step-by-step analysis system prompt.
// Tool name tokens are substituted directly so the template's Korean text
// stays free of Go template syntax.
func RenderAnalysisSystem(ctx context.Context) (string, error) {
	content := strings.NewReplacer(
		"{define_tool}", tools.ToolDefinePhenomenon,
		"{theories_tool}", tools.ToolApplyTheories,
		"{cognitive_tool}", tools.ToolAnalyzeCognitive,
		"{emotional_tool}", tools.ToolExamineEmotional,
		"{social_tool}", tools.ToolAssessSocial,
		"{mental_health_tool}", tools.ToolEvaluateMentalHealth,
	).Replace(analysisSystemPrompt)

	return renderSystem(ctx, content, "analysis")
}

// RenderSynthesisSystem renders the synthesis instruction that asks the model
// to fold the recorded analysis steps into the final JSON summary.
func RenderSynthesisSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, synthesisSystemPrompt, "synthesis")
}

// renderSystem wraps raw content via the Eino prompt component using a
// messages placeholder, so Prompt callbacks fire without the formatter
// touching JSON braces inside the template.
func renderSystem(ctx context.Context, content, name string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("%s prompt callbacks: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("%s prompt callbacks: empty result", name)
	}
	return msgs[0].Content, nil
}
