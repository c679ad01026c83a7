package ranking

import (
	"math"
	"strings"
)

var markupReplacer = strings.NewReplacer("<b>", "", "</b>", "")

// StripMarkup removes the search API's inline <b> emphasis tags and trims
// surrounding whitespace. Already-clean text comes back unchanged.
func StripMarkup(s string) string {
	return strings.TrimSpace(markupReplacer.Replace(s))
}

// Format projects a candidate and its sub-scores into the stable outward
// Recommendation shape, stripping emphasis markup from the text fields.
// It is total: absent fields stay empty strings.
func Format(b Candidate, s Scores) Recommendation {
	return Recommendation{
		Title:       StripMarkup(b.Title),
		Author:      StripMarkup(b.Author),
		Publisher:   StripMarkup(b.Publisher),
		Description: StripMarkup(b.Description),
		ISBN:        b.ISBN,
		PubDate:     b.PubDate,
		CoverImage:  b.Image,
		Link:        b.Link,
		Scores:      s,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
