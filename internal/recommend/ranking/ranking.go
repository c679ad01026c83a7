// Package ranking implements the hybrid book re-ranking engine: recency decay,
// search-rank relevance and genre keyword matching combined into one weighted
// score. The engine is a pure in-memory computation with no I/O and no state
// between calls; the only time-dependent input is the reference time used for
// recency scoring, which callers can inject for reproducible results.
package ranking

import "time"

const (
	// DefaultHalfLifeYears is the recency decay half-life.
	DefaultHalfLifeYears = 3.0

	// Default final-score weights. Treated as compatibility constants,
	// not values to re-derive; callers are responsible for keeping custom
	// weights summing to 1.0.
	DefaultRecencyWeight   = 0.4
	DefaultRelevanceWeight = 0.4
	DefaultGenreWeight     = 0.2

	// DefaultMaxResults caps the returned shortlist.
	DefaultMaxResults = 5
)

const (
	// unknownDateScore is returned when the publication date cannot be
	// parsed: a middle-low value that neither punishes nor rewards.
	unknownDateScore = 0.3
	// neutralScore is used when a signal carries no information (no genre
	// preference, empty result set).
	neutralScore = 0.5
)

// Candidate is one raw search-result record before ranking, as assembled from
// the external book-search collaborator. Text fields may still carry <b>
// emphasis markup; it is stripped during formatting, not here.
type Candidate struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
	ISBN        string `json:"isbn"`
	PubDate     string `json:"pubdate"` // YYYYMMDD, may be empty or malformed
	Image       string `json:"image"`
	Link        string `json:"link"`

	// SourceRank is the zero-based position of this record within the
	// result list of the query that produced it, and SourceTotal the size
	// of that list. They are only meaningful relative to each other and
	// are carried through for callers that score per-query; Rerank itself
	// treats the supplied pool as one ranking universe.
	SourceRank  int `json:"source_rank"`
	SourceTotal int `json:"source_total"`
}

// Scores holds the explainable sub-scores of a ranked book, each in [0, 1],
// rounded to three decimals for display.
type Scores struct {
	Recency    float64 `json:"recency"`
	Relevance  float64 `json:"relevance"`
	GenreMatch float64 `json:"genre_match"`
	Final      float64 `json:"final_score"`
}

// Recommendation is a ranked, markup-free projection of a Candidate plus its
// sub-scores, ready for downstream explanation generation.
type Recommendation struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
	ISBN        string `json:"isbn"`
	PubDate     string `json:"pubdate"`
	CoverImage  string `json:"cover_image"`
	Link        string `json:"link"`
	Scores      Scores `json:"ranking_scores"`
}

// Options configure a single Rerank call. The zero value selects the default
// weights, half-life, result cap, built-in taxonomy and wall-clock time.
type Options struct {
	// PreferredGenre is a label from the taxonomy, or empty / GenreOther
	// for no preference.
	PreferredGenre string

	// Weights for the final score. When all three are zero the defaults
	// (0.4 / 0.4 / 0.2) apply; otherwise they are used verbatim, so a
	// deliberate zero weight is possible.
	RecencyWeight   float64
	RelevanceWeight float64
	GenreWeight     float64

	// HalfLifeYears for recency decay; non-positive selects the default.
	HalfLifeYears float64

	// MaxResults caps the shortlist; non-positive selects the default.
	MaxResults int

	// Taxonomy maps genre labels to keyword lists; nil selects the
	// built-in table.
	Taxonomy Taxonomy

	// Now is the reference time for recency scoring. The zero value means
	// wall-clock time, which makes results time-dependent; inject a fixed
	// time for reproducibility.
	Now time.Time
}

func (o Options) withDefaults() Options {
	if o.RecencyWeight == 0 && o.RelevanceWeight == 0 && o.GenreWeight == 0 {
		o.RecencyWeight = DefaultRecencyWeight
		o.RelevanceWeight = DefaultRelevanceWeight
		o.GenreWeight = DefaultGenreWeight
	}
	if o.HalfLifeYears <= 0 {
		o.HalfLifeYears = DefaultHalfLifeYears
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.Taxonomy == nil {
		o.Taxonomy = DefaultTaxonomy()
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
