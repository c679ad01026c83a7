package ranking

import "sort"

// Rerank scores every candidate and returns the top MaxResults as formatted
// recommendations, sorted descending by final score. The supplied slice is
// treated as one ranking universe: relevance is computed from each
// candidate's position in it, so callers pooling several searches must
// deduplicate (by ISBN) before calling. Ties keep input order. Malformed
// records degrade to default sub-scores and never cause an error; an empty
// input yields an empty output.
func Rerank(books []Candidate, opts Options) []Recommendation {
	if len(books) == 0 {
		return []Recommendation{}
	}
	opts = opts.withDefaults()

	type scored struct {
		candidate Candidate
		scores    Scores
		final     float64
	}

	total := len(books)
	ranked := make([]scored, 0, total)
	for i, book := range books {
		recency := RecencyScore(book.PubDate, opts.HalfLifeYears, opts.Now)
		relevance := RelevanceScore(i, total)
		genreMatch := GenreMatchScore(book.Description, book.Title, opts.PreferredGenre, opts.Taxonomy)

		final := opts.RecencyWeight*recency +
			opts.RelevanceWeight*relevance +
			opts.GenreWeight*genreMatch

		ranked = append(ranked, scored{
			candidate: book,
			scores: Scores{
				Recency:    round3(recency),
				Relevance:  round3(relevance),
				GenreMatch: round3(genreMatch),
				Final:      round3(final),
			},
			final: final,
		})
	}

	// Sort on the unrounded score; rounding is display-only.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].final > ranked[j].final
	})

	if len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}

	out := make([]Recommendation, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, Format(s.candidate, s.scores))
	}
	return out
}
