package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockstudio/internal/domain"
	"stockstudio/internal/infra/credentials"
)

const geminiScoutTimeout = 60 * time.Second

type GeminiScoutOptions struct {
	Keys       *credentials.Pool
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   *OfflineScout
	OnFallback func(operation string, err error)
}

// GeminiScout asks a reasoning-grade Gemini model for market intelligence.
// Trend boards degrade to the offline scout when the upstream call fails so
// the dashboard always renders something; analysis, comparison and prompt
// generation surface the failure to the caller.
type GeminiScout struct {
	keys       *credentials.Pool
	model      string
	baseURL    string
	client     *http.Client
	fallback   *OfflineScout
	onFallback func(operation string, err error)
}

type scoutSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]*scoutSchema `json:"properties,omitempty"`
	Items      *scoutSchema            `json:"items,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type scoutRequest struct {
	Contents          []scoutContent         `json:"contents"`
	SystemInstruction *scoutContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *scoutGenerationConfig `json:"generationConfig,omitempty"`
}

type scoutContent struct {
	Role  string      `json:"role,omitempty"`
	Parts []scoutPart `json:"parts"`
}

type scoutPart struct {
	Text string `json:"text"`
}

type scoutGenerationConfig struct {
	ResponseMimeType string       `json:"responseMimeType,omitempty"`
	ResponseSchema   *scoutSchema `json:"responseSchema,omitempty"`
}

type scoutResponse struct {
	Candidates []struct {
		Content scoutContent `json:"content"`
	} `json:"candidates"`
}

type trendPayload struct {
	ID                string `json:"id"`
	Topic             string `json:"topic"`
	Niche             string `json:"niche"`
	Competition       string `json:"competition"`
	Category          string `json:"category"`
	Description       string `json:"description"`
	PotentialEarnings string `json:"potentialEarnings"`
	PopularityScore   int    `json:"popularityScore"`
	TrendHistory      []int  `json:"trendHistory"`
}

type trendsPayload struct {
	Trends []trendPayload `json:"trends"`
}

type analysisPayload struct {
	NichePath       string   `json:"nichePath"`
	SearchVolume    string   `json:"searchVolume"`
	Difficulty      string   `json:"difficulty"`
	VisualStyle     string   `json:"visualStyle"`
	Composition     string   `json:"composition"`
	SuggestedPrompt string   `json:"suggestedPrompt"`
	RelatedKeywords []string `json:"relatedKeywords"`
	Alternatives    []struct {
		Topic  string `json:"topic"`
		Score  int    `json:"score"`
		Reason string `json:"reason"`
	} `json:"lowCompetitionAlternatives"`
}

type comparisonPayload struct {
	Winner       string       `json:"winner"`
	WinnerReason string       `json:"winnerReason"`
	TopicA       scorePayload `json:"topicA"`
	TopicB       scorePayload `json:"topicB"`
}

type scorePayload struct {
	Name  string   `json:"name"`
	Score int      `json:"score"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
}

func NewGeminiScout(opts GeminiScoutOptions) (*GeminiScout, error) {
	if opts.Keys.Empty() {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-pro"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiScoutTimeout}
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewOfflineScout()
	}
	return &GeminiScout{
		keys:       opts.Keys,
		model:      model,
		baseURL:    baseURL,
		client:     client,
		fallback:   fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func trendSchema() *scoutSchema {
	return &scoutSchema{
		Type: "OBJECT",
		Properties: map[string]*scoutSchema{
			"trends": {
				Type: "ARRAY",
				Items: &scoutSchema{
					Type: "OBJECT",
					Properties: map[string]*scoutSchema{
						"id":                {Type: "STRING"},
						"topic":             {Type: "STRING"},
						"niche":             {Type: "STRING"},
						"competition":       {Type: "STRING"},
						"category":          {Type: "STRING"},
						"description":       {Type: "STRING"},
						"potentialEarnings": {Type: "STRING"},
						"popularityScore":   {Type: "NUMBER"},
						"trendHistory":      {Type: "ARRAY", Items: &scoutSchema{Type: "NUMBER"}},
					},
					Required: []string{
						"id", "topic", "niche", "competition", "category",
						"description", "potentialEarnings", "popularityScore", "trendHistory",
					},
				},
			},
		},
	}
}

func trendContents(kind TrendKind, category string) (string, string) {
	switch kind {
	case TrendSeasonal:
		return "Identify 6 major upcoming seasonal holidays or events for the next 60 days relevant to microstock contributors.", "Seasonal Trends"
	case TrendTShirt:
		return "Identify 9 high-selling T-Shirt niches for Print-on-Demand. Consider styles like Typography, Vintage, Minimalist.", "T-Shirt Trends"
	case TrendPNG:
		return "Identify 9 high-demand isolated PNG asset niches (Objects, Food, Textures).", "PNG Trends"
	case TrendCategory:
		return fmt.Sprintf("Identify 9 profitable trending niches for the following microstock category: %q.", category), "Category Trends"
	default:
		return "Identify 9 diverse and profitable microstock niches currently trending. Return a list of trends with market details.", "Daily Trends"
	}
}

func (g *GeminiScout) Trends(ctx context.Context, kind TrendKind, category string) ([]domain.Trend, error) {
	contents, operation := trendContents(kind, category)
	var payload trendsPayload
	err := g.generate(ctx, scoutRequest{
		Contents: []scoutContent{{Role: "user", Parts: []scoutPart{{Text: contents}}}},
		SystemInstruction: &scoutContent{Parts: []scoutPart{{
			Text: "You are a professional microstock market analyst. Return a JSON object with a 'trends' array.",
		}}},
		GenerationConfig: &scoutGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   trendSchema(),
		},
	}, &payload)
	if err != nil {
		if g.onFallback != nil {
			g.onFallback(operation, err)
		}
		return g.fallback.Trends(ctx, kind, category)
	}
	trends := make([]domain.Trend, 0, len(payload.Trends))
	for _, t := range payload.Trends {
		trends = append(trends, domain.Trend{
			ID:                t.ID,
			Topic:             t.Topic,
			Niche:             t.Niche,
			Competition:       t.Competition,
			Category:          t.Category,
			Description:       t.Description,
			PotentialEarnings: t.PotentialEarnings,
			PopularityScore:   t.PopularityScore,
			TrendHistory:      t.TrendHistory,
		})
	}
	if len(trends) == 0 {
		if g.onFallback != nil {
			g.onFallback(operation, errors.New("no trends returned"))
		}
		return g.fallback.Trends(ctx, kind, category)
	}
	return trends, nil
}

func (g *GeminiScout) Analyze(ctx context.Context, topic string) (*domain.TopicAnalysis, error) {
	var payload analysisPayload
	err := g.generate(ctx, scoutRequest{
		Contents: []scoutContent{{Role: "user", Parts: []scoutPart{{
			Text: fmt.Sprintf("Perform a deep market analysis for the microstock topic: %q.", topic),
		}}}},
		GenerationConfig: &scoutGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &scoutSchema{
				Type: "OBJECT",
				Properties: map[string]*scoutSchema{
					"nichePath":       {Type: "STRING"},
					"searchVolume":    {Type: "STRING"},
					"difficulty":      {Type: "STRING"},
					"visualStyle":     {Type: "STRING"},
					"composition":     {Type: "STRING"},
					"suggestedPrompt": {Type: "STRING"},
					"relatedKeywords": {Type: "ARRAY", Items: &scoutSchema{Type: "STRING"}},
					"lowCompetitionAlternatives": {
						Type: "ARRAY",
						Items: &scoutSchema{
							Type: "OBJECT",
							Properties: map[string]*scoutSchema{
								"topic":  {Type: "STRING"},
								"score":  {Type: "NUMBER"},
								"reason": {Type: "STRING"},
							},
						},
					},
				},
				Required: []string{
					"nichePath", "searchVolume", "difficulty", "visualStyle",
					"composition", "suggestedPrompt", "relatedKeywords", "lowCompetitionAlternatives",
				},
			},
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	analysis := &domain.TopicAnalysis{
		OriginalQuery:   topic,
		NichePath:       payload.NichePath,
		SearchVolume:    payload.SearchVolume,
		Difficulty:      payload.Difficulty,
		VisualStyle:     payload.VisualStyle,
		Composition:     payload.Composition,
		SuggestedPrompt: payload.SuggestedPrompt,
		RelatedKeywords: payload.RelatedKeywords,
	}
	for _, alt := range payload.Alternatives {
		analysis.Alternatives = append(analysis.Alternatives, domain.TopicAlternative{
			Topic:  alt.Topic,
			Score:  alt.Score,
			Reason: alt.Reason,
		})
	}
	return analysis, nil
}

func (g *GeminiScout) Compare(ctx context.Context, topicA, topicB string) (*domain.NicheComparison, error) {
	scoreSchema := &scoutSchema{
		Type: "OBJECT",
		Properties: map[string]*scoutSchema{
			"name":  {Type: "STRING"},
			"score": {Type: "NUMBER"},
			"pros":  {Type: "ARRAY", Items: &scoutSchema{Type: "STRING"}},
			"cons":  {Type: "ARRAY", Items: &scoutSchema{Type: "STRING"}},
		},
	}
	var payload comparisonPayload
	err := g.generate(ctx, scoutRequest{
		Contents: []scoutContent{{Role: "user", Parts: []scoutPart{{
			Text: fmt.Sprintf("Compare microstock niche A: %q against niche B: %q. Decide which is more profitable for a new contributor.", topicA, topicB),
		}}}},
		GenerationConfig: &scoutGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &scoutSchema{
				Type: "OBJECT",
				Properties: map[string]*scoutSchema{
					"winner":       {Type: "STRING"},
					"winnerReason": {Type: "STRING"},
					"topicA":       scoreSchema,
					"topicB":       scoreSchema,
				},
				Required: []string{"winner", "winnerReason", "topicA", "topicB"},
			},
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return &domain.NicheComparison{
		Winner:       payload.Winner,
		WinnerReason: payload.WinnerReason,
		TopicA:       domain.NicheScore(payload.TopicA),
		TopicB:       domain.NicheScore(payload.TopicB),
	}, nil
}

func (g *GeminiScout) Prompt(ctx context.Context, topic, style, composition string) (string, error) {
	var payload struct {
		Prompt string `json:"prompt"`
	}
	err := g.generate(ctx, scoutRequest{
		Contents: []scoutContent{{Role: "user", Parts: []scoutPart{{
			Text: fmt.Sprintf("Generate one high-quality, commercial AI image prompt for: %q. Style: %s. Composition: %s. Focus on high artistic and commercial standards.", topic, style, composition),
		}}}},
		GenerationConfig: &scoutGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &scoutSchema{
				Type:       "OBJECT",
				Properties: map[string]*scoutSchema{"prompt": {Type: "STRING"}},
				Required:   []string{"prompt"},
			},
		},
	}, &payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		return "", errors.New("empty prompt returned")
	}
	return payload.Prompt, nil
}

func (g *GeminiScout) BulkPrompts(ctx context.Context, topic string, count int, style, composition string) ([]string, error) {
	var payload struct {
		Prompts []string `json:"prompts"`
	}
	err := g.generate(ctx, scoutRequest{
		Contents: []scoutContent{{Role: "user", Parts: []scoutPart{{
			Text: fmt.Sprintf("Generate a list of %d unique, high-quality, commercial-grade AI image generation prompts for: %q. Style: %s. Composition: %s. Ensure creative variety across the prompts.", count, topic, style, composition),
		}}}},
		GenerationConfig: &scoutGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &scoutSchema{
				Type: "OBJECT",
				Properties: map[string]*scoutSchema{
					"prompts": {Type: "ARRAY", Items: &scoutSchema{Type: "STRING"}},
				},
				Required: []string{"prompts"},
			},
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if len(payload.Prompts) == 0 {
		return nil, errors.New("no prompts returned")
	}
	return payload.Prompts, nil
}

func (g *GeminiScout) generate(ctx context.Context, payload scoutRequest, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("encode gemini request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.keys.Key())
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var decoded scoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	text := ""
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				text = part.Text
				break
			}
		}
		if text != "" {
			break
		}
	}
	if text == "" {
		return errors.New("gemini returned no candidates")
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), out); err != nil {
		return fmt.Errorf("parse gemini payload: %w", err)
	}
	return nil
}

var _ Scout = (*GeminiScout)(nil)
