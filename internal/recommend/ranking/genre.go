package ranking

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// GenreOther is the catch-all label meaning "no genre preference".
const GenreOther = "기타"

// Genre-match tiers. Deliberately coarse: two or more keyword hits is a
// strong match, exactly one a weak match, none a miss.
const (
	strongMatchScore = 1.0
	weakMatchScore   = 0.7
	noMatchScore     = 0.3
)

//go:embed genres.yaml
var defaultGenresYAML []byte

// Taxonomy maps a genre label to its representative keywords. It is
// configuration data, not logic; alternate locales can supply their own table
// via LoadTaxonomy without touching the scorer.
type Taxonomy map[string][]string

var defaultTaxonomy = sync.OnceValue(func() Taxonomy {
	tax, err := LoadTaxonomy(bytes.NewReader(defaultGenresYAML))
	if err != nil {
		panic(fmt.Sprintf("ranking: embedded genre taxonomy is invalid: %v", err))
	}
	return tax
})

// DefaultTaxonomy returns the built-in Korean genre keyword table.
func DefaultTaxonomy() Taxonomy {
	return defaultTaxonomy()
}

// LoadTaxonomy reads a YAML genre-to-keywords mapping.
func LoadTaxonomy(r io.Reader) (Taxonomy, error) {
	var tax Taxonomy
	if err := yaml.NewDecoder(r).Decode(&tax); err != nil {
		return nil, fmt.Errorf("decode genre taxonomy: %w", err)
	}
	return tax, nil
}

// GenreMatchScore scores how well title + description textually match the
// preferred genre's keyword set. An absent preference, the catch-all label,
// or a genre missing from the taxonomy all yield a neutral 0.5.
func GenreMatchScore(description, title, preferredGenre string, tax Taxonomy) float64 {
	if preferredGenre == "" || preferredGenre == GenreOther {
		return neutralScore
	}
	if tax == nil {
		tax = DefaultTaxonomy()
	}
	keywords := tax[preferredGenre]
	if len(keywords) == 0 {
		return neutralScore
	}

	text := strings.ToLower(title + " " + description)
	matches := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			matches++
		}
	}

	switch {
	case matches >= 2:
		return strongMatchScore
	case matches == 1:
		return weakMatchScore
	default:
		return noMatchScore
	}
}
