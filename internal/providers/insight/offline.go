package insight

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"stockstudio/internal/domain"
)

var (
	offlineAdjectives = []string{
		"Abstract", "Vintage", "Futuristic", "Minimalist",
		"Cyberpunk", "Authentic", "Sustainable", "Luxury",
	}
	offlineSubjects = []string{
		"Coffee Culture", "Remote Work", "Electric Cars",
		"Smart Home", "Yoga Seniors", "Vertical Farming",
	}
)

// OfflineScout synthesizes plausible market data without any upstream call.
// It backs the no-credentials mode and the Gemini scout's failure path. One
// instance serves concurrent requests, so selection goes through the
// lock-protected top-level rand functions rather than a shared *rand.Rand.
type OfflineScout struct {
	roll func(n int) int
	now  func() time.Time
}

func NewOfflineScout() *OfflineScout {
	return &OfflineScout{
		roll: rand.Intn,
		now:  time.Now,
	}
}

func (o *OfflineScout) Trends(ctx context.Context, kind TrendKind, category string) ([]domain.Trend, error) {
	count := 6
	niche := "Commercial"
	description := "High demand stock photo concept."
	switch kind {
	case TrendSeasonal:
		count = 3
	case TrendTShirt:
		niche = "Print on Demand"
		description = "High demand design concept."
	case TrendPNG:
		niche = "Isolated Asset"
		description = "High demand design concept."
	case TrendCategory:
		count = 4
	}
	cat := "Trending"
	if kind == TrendCategory && strings.TrimSpace(category) != "" {
		cat = strings.TrimSpace(category)
	}
	trends := make([]domain.Trend, 0, count)
	stamp := o.now().UnixMilli()
	for i := 0; i < count; i++ {
		adj := offlineAdjectives[o.roll(len(offlineAdjectives))]
		subj := offlineSubjects[o.roll(len(offlineSubjects))]
		competition := "Medium"
		if o.roll(2) == 0 {
			competition = "Low"
		}
		history := make([]int, 7)
		for d := range history {
			history[d] = o.roll(20) + 70
		}
		trends = append(trends, domain.Trend{
			ID:                fmt.Sprintf("gen-%d-%d", stamp, i),
			Topic:             adj + " " + subj,
			Niche:             niche,
			Competition:       competition,
			Category:          cat,
			Description:       description,
			PotentialEarnings: "High",
			PopularityScore:   o.roll(24) + 75,
			TrendHistory:      history,
		})
	}
	return trends, nil
}

func (o *OfflineScout) Analyze(ctx context.Context, topic string) (*domain.TopicAnalysis, error) {
	topic = strings.TrimSpace(topic)
	return &domain.TopicAnalysis{
		OriginalQuery:   topic,
		NichePath:       "Commercial > " + topic,
		SearchVolume:    "Medium",
		Difficulty:      "Medium",
		VisualStyle:     "Natural light, authentic candid feel",
		Composition:     "Rule of thirds with generous copy space",
		SuggestedPrompt: fmt.Sprintf("Professional stock photo of %s, natural lighting, commercial quality", topic),
		RelatedKeywords: []string{topic, "business", "lifestyle", "concept", "background"},
		Alternatives: []domain.TopicAlternative{
			{Topic: topic + " close-up", Score: o.roll(20) + 70, Reason: "Narrower framing with fewer existing assets."},
			{Topic: topic + " flat lay", Score: o.roll(20) + 70, Reason: "Popular layout that is underserved for this subject."},
		},
	}, nil
}

func (o *OfflineScout) Compare(ctx context.Context, topicA, topicB string) (*domain.NicheComparison, error) {
	a := domain.NicheScore{
		Name:  strings.TrimSpace(topicA),
		Score: o.roll(30) + 60,
		Pros:  []string{"Steady buyer demand"},
		Cons:  []string{"Established contributors dominate search"},
	}
	b := domain.NicheScore{
		Name:  strings.TrimSpace(topicB),
		Score: o.roll(30) + 60,
		Pros:  []string{"Room for fresh visual styles"},
		Cons:  []string{"Smaller overall search volume"},
	}
	winner := a
	if b.Score > a.Score {
		winner = b
	}
	return &domain.NicheComparison{
		Winner:       winner.Name,
		WinnerReason: "Higher estimated demand relative to current supply.",
		TopicA:       a,
		TopicB:       b,
	}, nil
}

func (o *OfflineScout) Prompt(ctx context.Context, topic, style, composition string) (string, error) {
	return fmt.Sprintf("%s, %s style, %s, commercial quality, high detail",
		strings.TrimSpace(topic), strings.TrimSpace(style), strings.TrimSpace(composition)), nil
}

func (o *OfflineScout) BulkPrompts(ctx context.Context, topic string, count int, style, composition string) ([]string, error) {
	if count < 1 {
		count = 1
	}
	variations := []string{
		"soft morning light", "dramatic side lighting", "bright studio lighting",
		"golden hour glow", "overcast diffuse light", "neon accent lighting",
	}
	prompts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		light := variations[i%len(variations)]
		prompts = append(prompts, fmt.Sprintf("%s, %s style, %s, %s, commercial quality",
			strings.TrimSpace(topic), strings.TrimSpace(style), strings.TrimSpace(composition), light))
	}
	return prompts, nil
}

var _ Scout = (*OfflineScout)(nil)
