package nodes

import (
	"testing"

	"github.com/MinseoYoo/page-mind/internal/agent/model"
	"github.com/MinseoYoo/page-mind/internal/recommend/ranking"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAnalysisDigestCollectsToolCallArguments(t *testing.T) {
	history := []*schema.Message{
		schema.SystemMessage("system"),
		{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{
					ID: "call_1",
					Function: schema.FunctionCall{
						Name:      "define_psychological_phenomenon",
						Arguments: `{"phenomenon":"번아웃"}`,
					},
				},
			},
		},
		schema.ToolMessage(`{"recorded":true}`, "call_1"),
		{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{
					ID: "call_2",
					Function: schema.FunctionCall{
						Name:      "examine_emotional_motivational",
						Arguments: `{"emotions":["불안"]}`,
					},
				},
			},
		},
	}

	digest := buildAnalysisDigest(history)

	assert.Contains(t, digest, "### define_psychological_phenomenon")
	assert.Contains(t, digest, "번아웃")
	assert.Contains(t, digest, "### examine_emotional_motivational")
	assert.Contains(t, digest, "불안")
	// tool acks are not part of the digest
	assert.NotContains(t, digest, "recorded")
}

func TestBuildAnalysisDigestEmptyHistory(t *testing.T) {
	assert.Empty(t, buildAnalysisDigest(nil))
	assert.Empty(t, buildAnalysisDigest([]*schema.Message{schema.UserMessage("안녕하세요")}))
}

func TestToolLimitHelpers(t *testing.T) {
	state := &model.AppState{}

	for i := 0; i < 3; i++ {
		assert.False(t, incrementToolCallAndCheck(state, 3))
	}
	assert.False(t, state.ToolCallLimitReached)

	assert.True(t, incrementToolCallAndCheck(state, 3))
	assert.True(t, state.ToolCallLimitReached)
}

func TestCheckAndMarkToolLimitMarksOnce(t *testing.T) {
	state := &model.AppState{ToolCallCount: 5}

	assert.True(t, checkAndMarkToolLimit(state, 5))
	// already marked, not reported again
	assert.False(t, checkAndMarkToolLimit(state, 5))
}

func TestNormalizeMaxToolCalls(t *testing.T) {
	assert.Equal(t, DefaultMaxToolCalls, normalizeMaxToolCalls(0))
	assert.Equal(t, DefaultMaxToolCalls, normalizeMaxToolCalls(-1))
	assert.Equal(t, 7, normalizeMaxToolCalls(7))
}

func TestFormatAnalysisReport(t *testing.T) {
	summary := &model.PsychologicalSummary{
		MainConcerns:    []string{"직무 스트레스"},
		Emotions:        []string{"불안", "무기력"},
		Recommendations: []string{"규칙적인 수면"},
	}

	report := FormatAnalysisReport("오늘 이야기 나눠주셔서 감사해요.", summary)

	assert.True(t, len(report) > 0)
	assert.Contains(t, report, "오늘 이야기 나눠주셔서 감사해요.")
	assert.Contains(t, report, "직무 스트레스")
	assert.Contains(t, report, "불안")
	assert.Contains(t, report, "어떤 장르를 선호하시나요?")
	assert.Contains(t, report, "자기계발")
	assert.Contains(t, report, ranking.GenreOther)
	// empty sections are omitted
	assert.NotContains(t, report, "생각의 패턴")
}

func TestFormatRecommendations(t *testing.T) {
	books := []model.BookRecommendation{
		{
			Title:           "마음의 회복",
			Author:          "김저자",
			PubDate:         "20240115",
			RelevanceReason: "최신 출간된 책으로 도움이 될 수 있습니다.",
			Scores:          ranking.Scores{Final: 0.82},
		},
		{
			Title:  "두번째 책",
			Scores: ranking.Scores{Final: 0.5},
		},
	}

	out := FormatRecommendations(model.PsychologicalSummary{}, books)

	assert.Contains(t, out, "1. 마음의 회복 - 김저자 (2024년 1월)")
	assert.Contains(t, out, "최신 출간된 책으로")
	assert.Contains(t, out, "추천 점수 0.820")
	assert.Contains(t, out, "2. 두번째 책")
}

func TestFormatRecommendationsEmpty(t *testing.T) {
	out := FormatRecommendations(model.PsychologicalSummary{}, nil)
	require.Contains(t, out, "찾지 못했어요")
	assert.Contains(t, out, "자기계발")
}
