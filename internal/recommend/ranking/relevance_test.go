package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevanceScoreBoundaries(t *testing.T) {
	for _, total := range []int{1, 5, 100} {
		assert.Equal(t, 1.0, RelevanceScore(0, total), "position 0 of %d", total)
	}
	assert.Equal(t, 0.5, RelevanceScore(0, 0))
	assert.Equal(t, 0.5, RelevanceScore(3, -1))
}

func TestRelevanceScoreMonotonic(t *testing.T) {
	const total = 20
	prev := 2.0
	for pos := 0; pos < total; pos++ {
		score := RelevanceScore(pos, total)
		assert.LessOrEqual(t, score, prev, "position %d", pos)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
		prev = score
	}
}

func TestRelevanceScoreLastPosition(t *testing.T) {
	// normalized -> 1.0 drives the score toward 0 but never below it.
	assert.InDelta(t, 0.0, RelevanceScore(10, 10), 1e-9)
	assert.GreaterOrEqual(t, RelevanceScore(9, 10), 0.0)
}
