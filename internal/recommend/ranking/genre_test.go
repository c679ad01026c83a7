package ranking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreMatchScoreTiers(t *testing.T) {
	tax := Taxonomy{"자기계발": {"자기계발", "성장", "습관"}}

	tests := []struct {
		name        string
		title       string
		description string
		want        float64
	}{
		{"no keywords", "오래된소설", "긴 이야기", 0.3},
		{"one keyword", "성장하는 법", "평범한 책", 0.7},
		{"two keywords", "자기계발의 기술", "습관에 대하여", 1.0},
		{"three keywords still strong", "자기계발", "성장과 습관", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenreMatchScore(tt.description, tt.title, "자기계발", tax)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenreMatchScoreNeutral(t *testing.T) {
	tax := Taxonomy{"심리학": {"심리", "마음"}}

	// Absent preference and the catch-all label are always neutral,
	// whatever the text says.
	assert.Equal(t, 0.5, GenreMatchScore("심리와 마음의 책", "심리학", "", tax))
	assert.Equal(t, 0.5, GenreMatchScore("심리와 마음의 책", "심리학", GenreOther, tax))

	// Unknown genre label degrades to neutral as well.
	assert.Equal(t, 0.5, GenreMatchScore("anything", "title", "시집", tax))
}

func TestGenreMatchScoreCaseInsensitive(t *testing.T) {
	tax := Taxonomy{"business": {"leadership", "strategy"}}
	got := GenreMatchScore("A STRATEGY handbook", "On LEADERSHIP", "business", tax)
	assert.Equal(t, 1.0, got)
}

func TestDefaultTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()
	require.NotEmpty(t, tax)
	for _, genre := range []string{"자기계발", "심리학", "소설", "에세이", "인문", "경제/경영"} {
		assert.NotEmpty(t, tax[genre], "genre %s missing from built-in table", genre)
	}
}

func TestLoadTaxonomy(t *testing.T) {
	src := "fiction: [novel, story]\nessay:\n  - essay\n  - daily\n"
	tax, err := LoadTaxonomy(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"novel", "story"}, tax["fiction"])
	assert.Equal(t, []string{"essay", "daily"}, tax["essay"])

	_, err = LoadTaxonomy(strings.NewReader("[not: a: map"))
	assert.Error(t, err)
}
