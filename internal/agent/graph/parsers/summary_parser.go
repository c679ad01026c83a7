package parsers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MinseoYoo/page-mind/internal/agent/model"
	errx "github.com/MinseoYoo/page-mind/internal/core/error"
	logx "github.com/MinseoYoo/page-mind/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 128 * 1024 // 128KB
	maxListItems  = 20         // cap per string list
	maxItemLen    = 2 * 1024   // 2KB per list item
)

// ExtractJSON pulls the JSON object out of raw model output. Models wrap the
// payload inconsistently, so extraction is tiered: a ```json fence first, then
// a bare ``` fence, then the outermost brace span.
func ExtractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty content")
	}

	if block, ok := fencedBlock(content, "```json"); ok {
		return block, nil
	}
	if block, ok := fencedBlock(content, "```"); ok {
		return block, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(content[start : end+1]), nil
	}
	return "", fmt.Errorf("no json object found in content")
}

func fencedBlock(content, fence string) (string, bool) {
	start := strings.Index(content, fence)
	if start < 0 {
		return "", false
	}
	rest := content[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	block := strings.TrimSpace(rest[:end])
	if block == "" || !strings.HasPrefix(block, "{") {
		return "", false
	}
	return block, true
}

// ParseSummary decodes the synthesis model's output into a structured
// psychological summary, tolerating markdown wrapping and surrounding prose.
func ParseSummary(content string) (summary *model.PsychologicalSummary, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "summary_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("summary parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			summary = nil
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "summary_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	raw, err := ExtractJSON(content)
	if err != nil {
		return nil, fmt.Errorf("extract summary json: %w", err)
	}

	var s model.PsychologicalSummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	s.MainConcerns = sanitizeList(s.MainConcerns)
	s.Emotions = sanitizeList(s.Emotions)
	s.CognitivePatterns = sanitizeList(s.CognitivePatterns)
	s.Recommendations = sanitizeList(s.Recommendations)
	s.Keywords = sanitizeList(s.Keywords)
	s.Genre = strings.TrimSpace(s.Genre)

	if len(s.MainConcerns) == 0 && len(s.Keywords) == 0 {
		return nil, fmt.Errorf("summary has no concerns or keywords")
	}
	return &s, nil
}

// sanitizeList trims entries, drops empties and duplicates, and enforces the
// item caps.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || len(it) > maxItemLen || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if len(out) >= maxListItems {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
