package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// Tool names bound to the analysis model. Each tool records one section of
// the psychological assessment; the findings are echoed back so the model
// can reference them during synthesis.
const (
	ToolDefinePhenomenon     = "define_psychological_phenomenon"
	ToolApplyTheories        = "apply_psychological_theories"
	ToolAnalyzeCognitive     = "analyze_cognitive_processes"
	ToolExamineEmotional     = "examine_emotional_motivational"
	ToolAssessSocial         = "assess_social_situational"
	ToolEvaluateMentalHealth = "evaluate_mental_health_dimensions"
)

type recordAck struct {
	Tool     string `json:"tool"`
	Recorded bool   `json:"recorded"`
	Summary  string `json:"summary"`
}

func ack(name, summary string) *recordAck {
	return &recordAck{Tool: name, Recorded: true, Summary: summary}
}

// ===================================
// Define Psychological Phenomenon
// ===================================

type DefinePhenomenonInput struct {
	Phenomenon string `json:"phenomenon"`
	Definition string `json:"definition"`
	Evidence   string `json:"evidence,omitempty"`
}

func createDefinePhenomenonTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolDefinePhenomenon,
			Desc: "Record the central psychological phenomenon observed in the conversation, with a concise clinical definition and supporting evidence quoted from the client's own words.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"phenomenon": {
					Type:     "string",
					Desc:     "Name of the central phenomenon, e.g. burnout, anticipatory anxiety, low self-esteem.",
					Required: true,
				},
				"definition": {
					Type:     "string",
					Desc:     "One or two sentence clinical definition of the phenomenon.",
					Required: true,
				},
				"evidence": {
					Type: "string",
					Desc: "Direct quotes or paraphrases from the conversation supporting this identification.",
				},
			}),
		},
		func(ctx context.Context, in *DefinePhenomenonInput) (*recordAck, error) {
			if in.Phenomenon == "" || in.Definition == "" {
				return nil, fmt.Errorf("phenomenon and definition are required")
			}
			return ack(ToolDefinePhenomenon, in.Phenomenon), nil
		},
	)
}

// ===================================
// Apply Psychological Theories
// ===================================

type ApplyTheoriesInput struct {
	Theories    []string `json:"theories"`
	Application string   `json:"application"`
}

func createApplyTheoriesTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolApplyTheories,
			Desc: "Record which established psychological theories or frameworks explain the client's situation, and how each one applies.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"theories": {
					Type: "array",
					Desc: "Theory or framework names, e.g. cognitive behavioral model, attachment theory, learned helplessness.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
					Required: true,
				},
				"application": {
					Type:     "string",
					Desc:     "How the listed theories map onto this client's specific situation.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *ApplyTheoriesInput) (*recordAck, error) {
			if len(in.Theories) == 0 || in.Application == "" {
				return nil, fmt.Errorf("theories and application are required")
			}
			return ack(ToolApplyTheories, fmt.Sprintf("%d theories applied", len(in.Theories))), nil
		},
	)
}

// ===================================
// Analyze Cognitive Processes
// ===================================

type AnalyzeCognitiveInput struct {
	ThoughtPatterns []string `json:"thought_patterns"`
	Distortions     []string `json:"distortions,omitempty"`
	Analysis        string   `json:"analysis"`
}

func createAnalyzeCognitiveTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAnalyzeCognitive,
			Desc: "Record the client's recurring thought patterns and any cognitive distortions, with an analysis of how they sustain the presenting problem.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"thought_patterns": {
					Type: "array",
					Desc: "Recurring automatic thoughts or beliefs expressed by the client.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
					Required: true,
				},
				"distortions": {
					Type: "array",
					Desc: "Named cognitive distortions if present, e.g. catastrophizing, all-or-nothing thinking.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
				},
				"analysis": {
					Type:     "string",
					Desc:     "How these patterns interact with the client's emotions and behavior.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *AnalyzeCognitiveInput) (*recordAck, error) {
			if len(in.ThoughtPatterns) == 0 || in.Analysis == "" {
				return nil, fmt.Errorf("thought_patterns and analysis are required")
			}
			return ack(ToolAnalyzeCognitive, fmt.Sprintf("%d thought patterns recorded", len(in.ThoughtPatterns))), nil
		},
	)
}

// ===================================
// Examine Emotional & Motivational State
// ===================================

type ExamineEmotionalInput struct {
	Emotions    []string `json:"emotions"`
	Intensity   string   `json:"intensity,omitempty"`
	Motivations string   `json:"motivations"`
}

func createExamineEmotionalTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolExamineEmotional,
			Desc: "Record the client's dominant emotions with their intensity, and the underlying motivations or unmet needs driving them.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"emotions": {
					Type: "array",
					Desc: "Dominant emotions, e.g. 불안, 무기력, 분노, 외로움.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
					Required: true,
				},
				"intensity": {
					Type: "string",
					Desc: "Overall intensity assessment: low, moderate, or high.",
				},
				"motivations": {
					Type:     "string",
					Desc:     "Underlying motivations or unmet needs inferred from the conversation.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *ExamineEmotionalInput) (*recordAck, error) {
			if len(in.Emotions) == 0 || in.Motivations == "" {
				return nil, fmt.Errorf("emotions and motivations are required")
			}
			return ack(ToolExamineEmotional, fmt.Sprintf("%d emotions recorded", len(in.Emotions))), nil
		},
	)
}

// ===================================
// Assess Social & Situational Factors
// ===================================

type AssessSocialInput struct {
	Stressors     []string `json:"stressors"`
	SupportSystem string   `json:"support_system,omitempty"`
	Assessment    string   `json:"assessment"`
}

func createAssessSocialTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAssessSocial,
			Desc: "Record external stressors, the client's support system, and how situational factors contribute to the presenting problem.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"stressors": {
					Type: "array",
					Desc: "External stressors, e.g. workplace pressure, family conflict, financial strain.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
					Required: true,
				},
				"support_system": {
					Type: "string",
					Desc: "Available social support as described or implied by the client.",
				},
				"assessment": {
					Type:     "string",
					Desc:     "How the situational context shapes the client's current state.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *AssessSocialInput) (*recordAck, error) {
			if len(in.Stressors) == 0 || in.Assessment == "" {
				return nil, fmt.Errorf("stressors and assessment are required")
			}
			return ack(ToolAssessSocial, fmt.Sprintf("%d stressors recorded", len(in.Stressors))), nil
		},
	)
}

// ===================================
// Evaluate Mental Health Dimensions
// ===================================

type EvaluateMentalHealthInput struct {
	Strengths  []string `json:"strengths"`
	Concerns   []string `json:"concerns"`
	Evaluation string   `json:"evaluation"`
}

func createEvaluateMentalHealthTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolEvaluateMentalHealth,
			Desc: "Record an overall mental health evaluation: the client's strengths and protective factors, areas of concern, and a balanced summary. This is a reflective assessment, never a diagnosis.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"strengths": {
					Type: "array",
					Desc: "Protective factors and strengths, e.g. self-awareness, willingness to seek help.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
					Required: true,
				},
				"concerns": {
					Type: "array",
					Desc: "Areas of concern that deserve attention or follow-up.",
					ElemInfo: &schema.ParameterInfo{
						Type: "string",
					},
					Required: true,
				},
				"evaluation": {
					Type:     "string",
					Desc:     "Balanced overall evaluation drawing on the previous analysis steps.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *EvaluateMentalHealthInput) (*recordAck, error) {
			if in.Evaluation == "" {
				return nil, fmt.Errorf("evaluation is required")
			}
			if len(in.Strengths) == 0 && len(in.Concerns) == 0 {
				return nil, fmt.Errorf("at least one strength or concern is required")
			}
			return ack(ToolEvaluateMentalHealth, "mental health evaluation recorded"), nil
		},
	)
}

// GetAnalysisTools returns the recorder tools bound to the analysis model.
func GetAnalysisTools() []tool.BaseTool {
	return []tool.BaseTool{
		createDefinePhenomenonTool(),
		createApplyTheoriesTool(),
		createAnalyzeCognitiveTool(),
		createExamineEmotionalTool(),
		createAssessSocialTool(),
		createEvaluateMentalHealthTool(),
	}
}

// GetToolInfos extracts the ToolInfo descriptors for model binding.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
