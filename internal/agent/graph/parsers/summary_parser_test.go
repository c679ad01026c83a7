package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSummaryJSON = `{
  "main_concerns": ["직무 스트레스", "수면 문제"],
  "emotions": ["불안", "무기력"],
  "cognitive_patterns": ["파국화"],
  "recommendations": ["규칙적인 수면 습관"],
  "keywords": ["번아웃 극복", "스트레스 관리"],
  "genre": "자기계발"
}`

func TestExtractJSONFromJSONFence(t *testing.T) {
	content := "분석 결과입니다.\n```json\n" + validSummaryJSON + "\n```\n이상입니다."
	raw, err := ExtractJSON(content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "{"))
	assert.Contains(t, raw, "main_concerns")
}

func TestExtractJSONFromBareFence(t *testing.T) {
	content := "```\n" + validSummaryJSON + "\n```"
	raw, err := ExtractJSON(content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "{"))
}

func TestExtractJSONFromBraceSpan(t *testing.T) {
	content := "요약: " + validSummaryJSON + " 끝."
	raw, err := ExtractJSON(content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "{"))
	assert.True(t, strings.HasSuffix(raw, "}"))
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("분석할 내용이 없습니다.")
	require.Error(t, err)

	_, err = ExtractJSON("")
	require.Error(t, err)
}

func TestExtractJSONPrefersJSONFenceOverProseBraces(t *testing.T) {
	content := "참고 {비공식 메모} 입니다.\n```json\n{\"keywords\":[\"독서\"],\"main_concerns\":[\"걱정\"]}\n```"
	raw, err := ExtractJSON(content)
	require.NoError(t, err)
	assert.Contains(t, raw, "keywords")
	assert.NotContains(t, raw, "비공식")
}

func TestParseSummaryComplete(t *testing.T) {
	s, err := ParseSummary("```json\n" + validSummaryJSON + "\n```")
	require.NoError(t, err)

	assert.Equal(t, []string{"직무 스트레스", "수면 문제"}, s.MainConcerns)
	assert.Equal(t, []string{"불안", "무기력"}, s.Emotions)
	assert.Equal(t, []string{"파국화"}, s.CognitivePatterns)
	assert.Equal(t, []string{"번아웃 극복", "스트레스 관리"}, s.Keywords)
	assert.Equal(t, "자기계발", s.Genre)
}

func TestParseSummarySanitizesLists(t *testing.T) {
	content := `{
	  "main_concerns": ["  스트레스  ", "", "스트레스", "불면"],
	  "keywords": ["독서"],
	  "genre": "  심리학  "
	}`
	s, err := ParseSummary(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"스트레스", "불면"}, s.MainConcerns)
	assert.Equal(t, "심리학", s.Genre)
}

func TestParseSummaryRejectsEmptyPayload(t *testing.T) {
	_, err := ParseSummary(`{"main_concerns": [], "keywords": []}`)
	require.Error(t, err)
}

func TestParseSummaryRejectsMalformedJSON(t *testing.T) {
	_, err := ParseSummary("{not json at all")
	require.Error(t, err)
}
