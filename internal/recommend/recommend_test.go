package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinseoYoo/page-mind/internal/agent/model"
	"github.com/MinseoYoo/page-mind/internal/recommend/search"
)

var fixedNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

// fakeSearcher serves canned results per keyword and records the queries it saw.
type fakeSearcher struct {
	results map[string]*search.Result
	errs    map[string]error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, display int) (*search.Result, error) {
	f.queries = append(f.queries, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	if res, ok := f.results[query]; ok {
		return res, nil
	}
	return &search.Result{}, nil
}

func testConfig() model.RankingConfig {
	return model.RankingConfig{
		RecencyWeight:   0.4,
		RelevanceWeight: 0.4,
		GenreWeight:     0.2,
		HalfLifeYears:   3.0,
		MaxResults:      5,
		MaxKeywords:     5,
		PerKeyword:      5,
	}
}

func newTestService(t *testing.T, searcher BookSearcher) *Service {
	t.Helper()
	svc, err := NewService(searcher, testConfig(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return svc
}

func TestRecommendPoolsAndDeduplicates(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string]*search.Result{
			"습관": {Total: 50, Items: []search.Item{
				{Title: "습관의 힘", ISBN: "111", PubDate: "20240101"},
				{Title: "중복되는 책", ISBN: "222", PubDate: "20230101"},
			}},
			"성장": {Total: 30, Items: []search.Item{
				{Title: "중복되는 책", ISBN: "222", PubDate: "20230101"},
				{Title: "ISBN 없는 책", ISBN: "", PubDate: "20240101"},
				{Title: "성장하는 삶", ISBN: "333", PubDate: "20220101"},
			}},
		},
	}
	svc := newTestService(t, searcher)

	books, err := svc.Recommend(context.Background(), model.PsychologicalSummary{
		Keywords: []string{"습관", "성장"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"습관", "성장"}, searcher.queries)

	// Duplicate ISBN kept once, ISBN-less record dropped.
	require.Len(t, books, 3)
	isbns := []string{books[0].ISBN, books[1].ISBN, books[2].ISBN}
	assert.ElementsMatch(t, []string{"111", "222", "333"}, isbns)
}

func TestRecommendSurvivesKeywordFailures(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string]*search.Result{
			"불안": {Items: []search.Item{{Title: "마음 다루기", ISBN: "111", PubDate: "20240101"}}},
		},
		errs: map[string]error{"고장": errors.New("boom")},
	}
	svc := newTestService(t, searcher)

	books, err := svc.Recommend(context.Background(), model.PsychologicalSummary{
		Keywords: []string{"고장", "불안"},
	})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "111", books[0].ISBN)
}

func TestRecommendEmptyResults(t *testing.T) {
	svc := newTestService(t, &fakeSearcher{})
	books, err := svc.Recommend(context.Background(), model.PsychologicalSummary{Keywords: []string{"없는말"}})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestRecommendKeywordCap(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newTestService(t, searcher)
	_, err := svc.Recommend(context.Background(), model.PsychologicalSummary{
		Keywords: []string{"a", "b", "c", "d", "e", "f", "g"},
	})
	require.NoError(t, err)
	assert.Len(t, searcher.queries, 5)
}

func TestRecommendRelevanceReason(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string]*search.Result{
			"습관": {Items: []search.Item{
				{Title: "<b>자기계발</b>과 성장", Description: "습관", ISBN: "111", PubDate: fixedNow.Format("20060102")},
			}},
		},
	}
	svc := newTestService(t, searcher)

	books, err := svc.Recommend(context.Background(), model.PsychologicalSummary{
		MainConcerns: []string{"번아웃"},
		Keywords:     []string{"습관"},
		Genre:        "자기계발",
	})
	require.NoError(t, err)
	require.Len(t, books, 1)

	// Markup is stripped and every reason clause fires: fresh book,
	// matching genre, first concern quoted.
	assert.Equal(t, "자기계발과 성장", books[0].Title)
	assert.Contains(t, books[0].RelevanceReason, "최신 출간된 책으로")
	assert.Contains(t, books[0].RelevanceReason, "자기계발 장르에 적합하며")
	assert.Contains(t, books[0].RelevanceReason, "'번아웃'에 대한 통찰")
}

func TestNewServiceNilSearcher(t *testing.T) {
	_, err := NewService(nil, testConfig())
	assert.Error(t, err)
}
