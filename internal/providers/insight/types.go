package insight

import (
	"context"
	"fmt"

	"stockstudio/internal/domain"
)

// TrendKind selects which trend board to fetch.
type TrendKind string

const (
	TrendDaily    TrendKind = "daily"
	TrendSeasonal TrendKind = "seasonal"
	TrendTShirt   TrendKind = "tshirt"
	TrendPNG      TrendKind = "png"
	TrendCategory TrendKind = "category"
)

// ParseTrendKind validates a client-supplied kind. An empty kind means daily.
func ParseTrendKind(s string) (TrendKind, error) {
	switch TrendKind(s) {
	case "", TrendDaily:
		return TrendDaily, nil
	case TrendSeasonal, TrendTShirt, TrendPNG, TrendCategory:
		return TrendKind(s), nil
	}
	return "", fmt.Errorf("unknown trend kind %q", s)
}

// Scout discovers market intelligence for microstock contributors: trend
// boards, deep topic analysis, head-to-head niche comparison, and AI image
// prompt generation.
type Scout interface {
	Trends(ctx context.Context, kind TrendKind, category string) ([]domain.Trend, error)
	Analyze(ctx context.Context, topic string) (*domain.TopicAnalysis, error)
	Compare(ctx context.Context, topicA, topicB string) (*domain.NicheComparison, error)
	Prompt(ctx context.Context, topic, style, composition string) (string, error)
	BulkPrompts(ctx context.Context, topic string, count int, style, composition string) ([]string, error)
}
