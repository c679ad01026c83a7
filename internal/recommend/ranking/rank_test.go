package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerankEmptyInput(t *testing.T) {
	got := Rerank(nil, Options{Now: refNow})
	assert.Empty(t, got)
	got = Rerank([]Candidate{}, Options{Now: refNow})
	assert.Empty(t, got)
}

func TestRerankDeterministicOrder(t *testing.T) {
	// Five candidates whose final scores are fully determined by the
	// injected reference time: newer books earlier in the pool win.
	books := []Candidate{
		{Title: "first", ISBN: "i1", PubDate: "20250615"},
		{Title: "second", ISBN: "i2", PubDate: "20230101"},
		{Title: "third", ISBN: "i3", PubDate: "20200101"},
		{Title: "fourth", ISBN: "i4", PubDate: "20150101"},
		{Title: "fifth", ISBN: "i5", PubDate: "20050101"},
	}
	got := Rerank(books, Options{Now: refNow})
	require.Len(t, got, 5)
	for i, want := range []string{"first", "second", "third", "fourth", "fifth"} {
		assert.Equal(t, want, got[i].Title)
	}
	// Final scores are strictly descending here.
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].Scores.Final, got[i].Scores.Final)
	}
	// Weighted combination is reproducible for the top entry:
	// recency=1.0 (fresh, clamped), relevance=1.0 (position 0),
	// genre=0.5 (no preference) -> 0.4 + 0.4 + 0.1.
	assert.InDelta(t, 0.9, got[0].Scores.Final, 1e-3)
}

func TestRerankTopNCap(t *testing.T) {
	books := make([]Candidate, 20)
	for i := range books {
		books[i] = Candidate{
			Title:   fmt.Sprintf("book-%02d", i),
			ISBN:    fmt.Sprintf("isbn-%02d", i),
			PubDate: "20240101",
		}
	}
	got := Rerank(books, Options{MaxResults: 5, Now: refNow})
	require.Len(t, got, 5)
	// Same recency and genre for all, so relevance (input position) decides:
	// the first five books of the pool carry the highest final scores.
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("book-%02d", i), got[i].Title)
	}
}

func TestRerankStableTieBreak(t *testing.T) {
	// Identical records at equal list positions are impossible, but equal
	// final scores can still happen; input order must be preserved then.
	books := []Candidate{
		{Title: "alpha", ISBN: "a", PubDate: "bogus"},
		{Title: "beta", ISBN: "b", PubDate: "bogus"},
	}
	// Zero relevance weight makes both candidates score identically.
	got := Rerank(books, Options{
		RecencyWeight: 0.8,
		GenreWeight:   0.2,
		Now:           refNow,
	})
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Title)
	assert.Equal(t, "beta", got[1].Title)
	assert.Equal(t, got[0].Scores.Final, got[1].Scores.Final)
}

func TestRerankScenario(t *testing.T) {
	threeYearsAgo := refNow.AddDate(-3, 0, 0).Format("20060102")
	twentyYearsAgo := refNow.AddDate(-20, 0, 0).Format("20060102")

	books := []Candidate{
		{Title: "자기계발의 기술", Description: "습관과 성장", ISBN: "s1", PubDate: threeYearsAgo},
		{Title: "오래된소설", Description: "", ISBN: "s2", PubDate: twentyYearsAgo},
	}
	got := Rerank(books, Options{
		PreferredGenre:  "자기계발",
		RecencyWeight:   0.4,
		RelevanceWeight: 0.4,
		GenreWeight:     0.2,
		MaxResults:      2,
		Now:             refNow,
	})
	require.Len(t, got, 2)
	assert.Equal(t, "자기계발의 기술", got[0].Title)
	assert.Equal(t, "오래된소설", got[1].Title)

	// The winner is fresher, better placed, and genre-matched.
	assert.Greater(t, got[0].Scores.Recency, got[1].Scores.Recency)
	assert.Greater(t, got[0].Scores.Relevance, got[1].Scores.Relevance)
	assert.Equal(t, 1.0, got[0].Scores.GenreMatch)
	assert.Equal(t, 0.3, got[1].Scores.GenreMatch)
}

func TestRerankMalformedRecordsDegrade(t *testing.T) {
	books := []Candidate{
		{Title: "", Description: "", ISBN: "", PubDate: "garbage"},
		{Title: "fine", ISBN: "x", PubDate: "20240601"},
	}
	got := Rerank(books, Options{Now: refNow})
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.GreaterOrEqual(t, rec.Scores.Final, 0.0)
		assert.LessOrEqual(t, rec.Scores.Final, 1.0)
	}
}

func TestRerankScoresRounded(t *testing.T) {
	got := Rerank([]Candidate{{Title: "t", ISBN: "i", PubDate: "20220304"}}, Options{Now: refNow})
	require.Len(t, got, 1)
	for _, v := range []float64{got[0].Scores.Recency, got[0].Scores.Relevance, got[0].Scores.GenreMatch, got[0].Scores.Final} {
		assert.InDelta(t, v, round3(v), 1e-9, "score %v must be rounded to 3 decimals", v)
	}
}
