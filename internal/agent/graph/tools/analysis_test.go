package tools

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoke(t *testing.T, bt tool.BaseTool, args string) (string, error) {
	t.Helper()
	inv, ok := bt.(tool.InvokableTool)
	require.True(t, ok, "tool must be invokable")
	return inv.InvokableRun(context.Background(), args)
}

func TestGetAnalysisToolsExposesAllRecorders(t *testing.T) {
	ts := GetAnalysisTools()
	require.Len(t, ts, 6)

	infos, err := GetToolInfos(context.Background(), ts)
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.ElementsMatch(t, []string{
		ToolDefinePhenomenon,
		ToolApplyTheories,
		ToolAnalyzeCognitive,
		ToolExamineEmotional,
		ToolAssessSocial,
		ToolEvaluateMentalHealth,
	}, names)
}

func TestDefinePhenomenonRecords(t *testing.T) {
	out, err := invoke(t, createDefinePhenomenonTool(),
		`{"phenomenon":"번아웃","definition":"만성적인 직무 스트레스로 인한 정서적 소진 상태","evidence":"아무것도 하기 싫어요"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"recorded":true`)
	assert.Contains(t, out, ToolDefinePhenomenon)
	assert.Contains(t, out, "번아웃")
}

func TestDefinePhenomenonRequiresFields(t *testing.T) {
	_, err := invoke(t, createDefinePhenomenonTool(), `{"phenomenon":"번아웃"}`)
	require.Error(t, err)
}

func TestApplyTheoriesRequiresAtLeastOneTheory(t *testing.T) {
	_, err := invoke(t, createApplyTheoriesTool(), `{"theories":[],"application":"설명"}`)
	require.Error(t, err)

	out, err := invoke(t, createApplyTheoriesTool(),
		`{"theories":["인지행동모델","학습된 무기력"],"application":"반복된 실패 경험이 무기력을 강화"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"recorded":true`)
}

func TestAnalyzeCognitiveAllowsMissingDistortions(t *testing.T) {
	out, err := invoke(t, createAnalyzeCognitiveTool(),
		`{"thought_patterns":["나는 무엇을 해도 안 된다"],"analysis":"자기비난이 회피 행동을 유지시킴"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"recorded":true`)
}

func TestExamineEmotionalRequiresMotivations(t *testing.T) {
	_, err := invoke(t, createExamineEmotionalTool(), `{"emotions":["불안"]}`)
	require.Error(t, err)
}

func TestAssessSocialRecordsStressors(t *testing.T) {
	out, err := invoke(t, createAssessSocialTool(),
		`{"stressors":["직장 내 과중한 업무","상사와의 갈등"],"assessment":"직무 환경이 주요 유발 요인"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"recorded":true`)
}

func TestEvaluateMentalHealthNeedsStrengthOrConcern(t *testing.T) {
	_, err := invoke(t, createEvaluateMentalHealthTool(),
		`{"strengths":[],"concerns":[],"evaluation":"평가"}`)
	require.Error(t, err)

	out, err := invoke(t, createEvaluateMentalHealthTool(),
		`{"strengths":["자기 인식"],"concerns":["수면 문제"],"evaluation":"도움 추구 의지가 긍정적 신호"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"recorded":true`)
}
