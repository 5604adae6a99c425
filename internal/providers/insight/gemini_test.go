package insight

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"stockstudio/internal/infra/credentials"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func candidateBody(t *testing.T, payload any) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	wrapper := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{"parts": []map[string]any{{"text": string(raw)}}},
		}},
	}
	body, err := json.Marshal(wrapper)
	if err != nil {
		t.Fatalf("marshal wrapper: %v", err)
	}
	return string(body)
}

func scoutPool(t *testing.T) *credentials.Pool {
	t.Helper()
	pool := credentials.NewPool([]string{"key-1"}, nil)
	if pool.Empty() {
		t.Fatalf("pool is empty")
	}
	return pool
}

func TestGeminiScoutTrends(t *testing.T) {
	var prompt string
	scout, err := NewGeminiScout(GeminiScoutOptions{
		Keys: scoutPool(t),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			var req scoutRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			prompt = req.Contents[0].Parts[0].Text
			body := candidateBody(t, map[string]any{"trends": []map[string]any{{
				"id": "t1", "topic": "Vertical Farming", "niche": "Commercial",
				"competition": "Low", "category": "Nature", "description": "d",
				"potentialEarnings": "High", "popularityScore": 88,
				"trendHistory": []int{70, 72, 74, 76, 78, 80, 82},
			}}})
			return jsonResponse(http.StatusOK, body), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiScout returned error: %v", err)
	}
	trends, err := scout.Trends(context.Background(), TrendDaily, "")
	if err != nil {
		t.Fatalf("Trends returned error: %v", err)
	}
	if len(trends) != 1 || trends[0].Topic != "Vertical Farming" {
		t.Fatalf("trends = %+v, want one Vertical Farming entry", trends)
	}
	if trends[0].PopularityScore != 88 {
		t.Fatalf("PopularityScore = %d, want 88", trends[0].PopularityScore)
	}
	if !strings.Contains(prompt, "currently trending") {
		t.Fatalf("daily prompt = %q, want trending request", prompt)
	}
}

func TestGeminiScoutTrendsFallsBackOffline(t *testing.T) {
	var fallbackOp string
	scout, err := NewGeminiScout(GeminiScoutOptions{
		Keys: scoutPool(t),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
		OnFallback: func(operation string, err error) {
			fallbackOp = operation
		},
	})
	if err != nil {
		t.Fatalf("NewGeminiScout returned error: %v", err)
	}
	trends, err := scout.Trends(context.Background(), TrendTShirt, "")
	if err != nil {
		t.Fatalf("Trends returned error: %v", err)
	}
	if len(trends) == 0 {
		t.Fatalf("fallback produced no trends")
	}
	if trends[0].Niche != "Print on Demand" {
		t.Fatalf("Niche = %q, want %q", trends[0].Niche, "Print on Demand")
	}
	if fallbackOp != "T-Shirt Trends" {
		t.Fatalf("fallback operation = %q, want %q", fallbackOp, "T-Shirt Trends")
	}
}

func TestGeminiScoutAnalyzePropagatesFailure(t *testing.T) {
	scout, err := NewGeminiScout(GeminiScoutOptions{
		Keys: scoutPool(t),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"quota"}}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiScout returned error: %v", err)
	}
	if _, err := scout.Analyze(context.Background(), "drone photography"); err == nil {
		t.Fatalf("Analyze succeeded, want error")
	}
}

func TestGeminiScoutCompare(t *testing.T) {
	scout, err := NewGeminiScout(GeminiScoutOptions{
		Keys: scoutPool(t),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			body := candidateBody(t, map[string]any{
				"winner":       "Urban Gardening",
				"winnerReason": "Less supply for the demand.",
				"topicA": map[string]any{"name": "Urban Gardening", "score": 82, "pros": []string{"demand"}, "cons": []string{"seasonal"}},
				"topicB": map[string]any{"name": "Office Meetings", "score": 55, "pros": []string{"evergreen"}, "cons": []string{"saturated"}},
			})
			return jsonResponse(http.StatusOK, body), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiScout returned error: %v", err)
	}
	result, err := scout.Compare(context.Background(), "Urban Gardening", "Office Meetings")
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if result.Winner != "Urban Gardening" {
		t.Fatalf("Winner = %q, want %q", result.Winner, "Urban Gardening")
	}
	if result.TopicB.Score != 55 {
		t.Fatalf("TopicB.Score = %d, want 55", result.TopicB.Score)
	}
}

func TestGeminiScoutBulkPrompts(t *testing.T) {
	scout, err := NewGeminiScout(GeminiScoutOptions{
		Keys: scoutPool(t),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			body := candidateBody(t, map[string]any{"prompts": []string{"p1", "p2", "p3"}})
			return jsonResponse(http.StatusOK, body), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiScout returned error: %v", err)
	}
	prompts, err := scout.BulkPrompts(context.Background(), "coffee", 3, "Photorealistic", "Close-up")
	if err != nil {
		t.Fatalf("BulkPrompts returned error: %v", err)
	}
	if len(prompts) != 3 {
		t.Fatalf("len(prompts) = %d, want 3", len(prompts))
	}
}

func TestParseTrendKind(t *testing.T) {
	cases := []struct {
		in      string
		want    TrendKind
		wantErr bool
	}{
		{"", TrendDaily, false},
		{"daily", TrendDaily, false},
		{"seasonal", TrendSeasonal, false},
		{"tshirt", TrendTShirt, false},
		{"png", TrendPNG, false},
		{"category", TrendCategory, false},
		{"weekly", "", true},
	}
	for _, tc := range cases {
		got, err := ParseTrendKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTrendKind(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTrendKind(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTrendKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
