package nodes

import (
	"fmt"
	"strings"

	"github.com/MinseoYoo/page-mind/internal/agent/model"
	"github.com/MinseoYoo/page-mind/internal/recommend/ranking"
)

// selectableGenres is the order genres are offered in the report.
var selectableGenres = []string{"자기계발", "심리학", "소설", "에세이", "인문", "경제/경영", ranking.GenreOther}

// FormatAnalysisReport renders the psychological summary for the user, led by
// the counselor's closing reply, and ends with the genre invitation.
func FormatAnalysisReport(closingReply string, summary *model.PsychologicalSummary) string {
	var b strings.Builder

	if strings.TrimSpace(closingReply) != "" {
		b.WriteString(strings.TrimSpace(closingReply))
		b.WriteString("\n\n")
	}

	b.WriteString("📋 지금까지의 대화를 바탕으로 마음 상태를 정리해 보았어요.\n\n")

	writeSection(&b, "주요 고민", summary.MainConcerns)
	writeSection(&b, "느끼고 계신 감정", summary.Emotions)
	writeSection(&b, "생각의 패턴", summary.CognitivePatterns)
	writeSection(&b, "작은 제안", summary.Recommendations)

	b.WriteString("이제 마음에 와닿는 책을 찾아드리고 싶어요. 어떤 장르를 선호하시나요?\n")
	b.WriteString(strings.Join(selectableGenres, " / "))
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("■ " + title + "\n")
	for _, it := range items {
		b.WriteString("  - " + it + "\n")
	}
	b.WriteString("\n")
}

// FormatRecommendations renders the ranked books as the final reply.
func FormatRecommendations(summary model.PsychologicalSummary, books []model.BookRecommendation) string {
	if len(books) == 0 {
		return "죄송해요, 지금은 추천할 만한 책을 찾지 못했어요. 다른 장르를 선택해 보시겠어요?\n" +
			strings.Join(selectableGenres, " / ")
	}

	var b strings.Builder
	b.WriteString("📚 마음에 맞는 책을 골라 보았어요.\n\n")

	for i, book := range books {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, book.Title))
		if book.Author != "" {
			b.WriteString(" - " + book.Author)
		}
		if when := formatPubDate(book.PubDate); when != "" {
			b.WriteString(" (" + when + ")")
		}
		b.WriteString("\n")
		if book.RelevanceReason != "" {
			b.WriteString("   " + book.RelevanceReason + "\n")
		}
		b.WriteString(fmt.Sprintf("   추천 점수 %.3f\n\n", book.Scores.Final))
	}

	b.WriteString("즐거운 독서가 마음의 쉼표가 되기를 바랄게요. 🌿")
	return b.String()
}

func formatPubDate(pubdate string) string {
	published, ok := ranking.ParsePubDate(pubdate)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d년 %d월", published.Year(), int(published.Month()))
}
