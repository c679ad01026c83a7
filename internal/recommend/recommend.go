// Package recommend turns a psychological summary into a ranked book
// shortlist: it fans out keyword searches, pools and deduplicates the raw
// results, re-ranks them and attaches a template-based recommendation reason.
package recommend

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MinseoYoo/page-mind/internal/agent/model"
	"github.com/MinseoYoo/page-mind/internal/recommend/ranking"
	"github.com/MinseoYoo/page-mind/internal/recommend/search"
	logx "github.com/MinseoYoo/page-mind/pkg/logger"
)

// BookSearcher is the slice of the search client the service needs.
type BookSearcher interface {
	Search(ctx context.Context, query string, display int) (*search.Result, error)
}

type Option func(*Service)

// WithClock injects the reference time used for recency scoring; tests use it
// to make rankings reproducible.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTaxonomy replaces the genre keyword table.
func WithTaxonomy(tax ranking.Taxonomy) Option {
	return func(s *Service) { s.taxonomy = tax }
}

type Service struct {
	searcher BookSearcher
	cfg      model.RankingConfig
	taxonomy ranking.Taxonomy
	now      func() time.Time
}

func NewService(searcher BookSearcher, cfg model.RankingConfig, opts ...Option) (*Service, error) {
	if searcher == nil {
		return nil, fmt.Errorf("book searcher is nil")
	}
	s := &Service{
		searcher: searcher,
		cfg:      cfg,
		taxonomy: ranking.DefaultTaxonomy(),
		now:      time.Now,
	}
	if cfg.TaxonomyPath != "" {
		f, err := os.Open(cfg.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("open genre taxonomy %s: %w", cfg.TaxonomyPath, err)
		}
		defer f.Close()
		tax, err := ranking.LoadTaxonomy(f)
		if err != nil {
			return nil, fmt.Errorf("load genre taxonomy %s: %w", cfg.TaxonomyPath, err)
		}
		s.taxonomy = tax
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Recommend searches the summary's keywords, pools and deduplicates the
// candidates by ISBN, and returns the re-ranked shortlist. Individual keyword
// search failures degrade to fewer candidates rather than failing the whole
// recommendation; no matches at all yields an empty list, not an error.
func (s *Service) Recommend(ctx context.Context, summary model.PsychologicalSummary) ([]model.BookRecommendation, error) {
	keywords := summary.Keywords
	maxKeywords := s.cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = 5
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	perKeyword := s.cfg.PerKeyword
	if perKeyword <= 0 {
		perKeyword = 5
	}

	candidates := s.poolCandidates(ctx, keywords, perKeyword)
	if len(candidates) == 0 {
		logx.Warn().Strs("keywords", keywords).Msg("no book candidates found")
		return []model.BookRecommendation{}, nil
	}

	ranked := ranking.Rerank(candidates, ranking.Options{
		PreferredGenre:  summary.Genre,
		RecencyWeight:   s.cfg.RecencyWeight,
		RelevanceWeight: s.cfg.RelevanceWeight,
		GenreWeight:     s.cfg.GenreWeight,
		HalfLifeYears:   s.cfg.HalfLifeYears,
		MaxResults:      s.cfg.MaxResults,
		Taxonomy:        s.taxonomy,
		Now:             s.now(),
	})

	books := make([]model.BookRecommendation, 0, len(ranked))
	for _, rec := range ranked {
		books = append(books, model.BookRecommendation{
			Title:           rec.Title,
			Author:          rec.Author,
			Publisher:       rec.Publisher,
			Description:     rec.Description,
			ISBN:            rec.ISBN,
			PubDate:         rec.PubDate,
			CoverImage:      rec.CoverImage,
			Link:            rec.Link,
			RelevanceReason: relevanceReason(rec, summary),
			Scores:          rec.Scores,
		})
	}

	logx.Debug().Int("candidates", len(candidates)).Int("recommended", len(books)).Msg("book recommendation complete")
	return books, nil
}

// poolCandidates runs one search per keyword and merges the results,
// deduplicating by ISBN (first occurrence wins) and dropping records without
// one. SourceRank/SourceTotal record each item's place in its own query.
func (s *Service) poolCandidates(ctx context.Context, keywords []string, perKeyword int) []ranking.Candidate {
	var pooled []ranking.Candidate
	seen := make(map[string]struct{})

	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		result, err := s.searcher.Search(ctx, keyword, perKeyword)
		if err != nil {
			logx.Warn().Err(err).Str("keyword", keyword).Msg("keyword search failed, skipping")
			continue
		}
		total := len(result.Items)
		for i, item := range result.Items {
			if item.ISBN == "" {
				continue
			}
			if _, dup := seen[item.ISBN]; dup {
				continue
			}
			seen[item.ISBN] = struct{}{}
			pooled = append(pooled, ranking.Candidate{
				Title:       item.Title,
				Author:      item.Author,
				Publisher:   item.Publisher,
				Description: item.Description,
				ISBN:        item.ISBN,
				PubDate:     item.PubDate,
				Image:       item.Image,
				Link:        item.Link,
				SourceRank:  i,
				SourceTotal: total,
			})
		}
	}
	return pooled
}

// relevanceReason builds the short explanation shown next to each book from
// its sub-scores and the user's main concern.
func relevanceReason(rec ranking.Recommendation, summary model.PsychologicalSummary) string {
	var reasons []string

	if rec.Scores.Recency > 0.7 {
		reasons = append(reasons, "최신 출간된 책으로")
	}
	if rec.Scores.GenreMatch > 0.7 && summary.Genre != "" {
		reasons = append(reasons, fmt.Sprintf("%s 장르에 적합하며", summary.Genre))
	}
	if len(summary.MainConcerns) > 0 {
		reasons = append(reasons, fmt.Sprintf("'%s'에 대한 통찰을 제공합니다", summary.MainConcerns[0]))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "검색 키워드와 높은 관련성을 보이며 도움이 될 수 있습니다")
	}
	return strings.Join(reasons, " ") + "."
}
