package model

import (
	"time"

	"github.com/MinseoYoo/page-mind/internal/recommend/ranking"
)

// PsychologicalSummary is the structured profile the analysis stage distills
// from a finished counseling conversation. Keywords feed the book search;
// Genre, once the user picks one, steers the genre-match score.
type PsychologicalSummary struct {
	MainConcerns      []string `json:"main_concerns"`
	Emotions          []string `json:"emotions"`
	CognitivePatterns []string `json:"cognitive_patterns"`
	Recommendations   []string `json:"recommendations"`
	Keywords          []string `json:"keywords"`
	Genre             string   `json:"genre,omitempty"`
}

// BookRecommendation is one ranked book as presented to the user, with the
// ranking sub-scores retained so the recommendation can be explained.
type BookRecommendation struct {
	Title           string         `json:"title"`
	Author          string         `json:"author"`
	Publisher       string         `json:"publisher"`
	Description     string         `json:"description"`
	ISBN            string         `json:"isbn"`
	PubDate         string         `json:"pubdate"`
	CoverImage      string         `json:"cover_image,omitempty"`
	Link            string         `json:"link,omitempty"`
	RelevanceReason string         `json:"relevance_reason"`
	Scores          ranking.Scores `json:"ranking_scores"`
}

// CounselingResult bundles the analysis and the recommended books produced
// for one session.
type CounselingResult struct {
	Summary     PsychologicalSummary `json:"summary"`
	Books       []BookRecommendation `json:"recommended_books"`
	GeneratedAt time.Time            `json:"generated_at"`
}
