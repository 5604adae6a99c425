package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"stockstudio/internal/analytics"
	"stockstudio/internal/providers/insight"
)

// Trends returns one of the trend boards: daily, seasonal, tshirt, png or
// category (the latter requires a category query parameter).
func (a *App) Trends(w http.ResponseWriter, r *http.Request) {
	if a.Scout == nil {
		a.error(w, http.StatusServiceUnavailable, "no_scout", "trend discovery is not configured")
		return
	}
	kind, err := insight.ParseTrendKind(r.URL.Query().Get("kind"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if kind == insight.TrendCategory && category == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "category is required for kind=category")
		return
	}
	started := time.Now()
	trends, err := a.Scout.Trends(r.Context(), kind, category)
	if err != nil {
		a.recordUsage(r, analytics.EventTrendFetch, false, map[string]any{"kind": string(kind)})
		a.error(w, http.StatusBadGateway, "upstream", "trend fetch failed")
		return
	}
	a.recordUsage(r, analytics.EventTrendFetch, true, map[string]any{
		"kind":       string(kind),
		"count":      len(trends),
		"latency_ms": time.Since(started).Milliseconds(),
	})
	a.json(w, http.StatusOK, map[string]any{"kind": kind, "trends": trends})
}

type analyzeRequest struct {
	Topic string `json:"topic"`
}

func (a *App) AnalyzeTopic(w http.ResponseWriter, r *http.Request) {
	if a.Scout == nil {
		a.error(w, http.StatusServiceUnavailable, "no_scout", "trend discovery is not configured")
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Topic) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic is required")
		return
	}
	analysis, err := a.Scout.Analyze(r.Context(), strings.TrimSpace(req.Topic))
	if err != nil {
		a.Log.Warn().Err(err).Str("topic", req.Topic).Msg("topic analysis failed")
		a.error(w, http.StatusBadGateway, "upstream", "analysis failed")
		return
	}
	a.json(w, http.StatusOK, analysis)
}

type battleRequest struct {
	TopicA string `json:"topic_a"`
	TopicB string `json:"topic_b"`
}

func (a *App) BattleNiches(w http.ResponseWriter, r *http.Request) {
	if a.Scout == nil {
		a.error(w, http.StatusServiceUnavailable, "no_scout", "trend discovery is not configured")
		return
	}
	var req battleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	topicA := strings.TrimSpace(req.TopicA)
	topicB := strings.TrimSpace(req.TopicB)
	if topicA == "" || topicB == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic_a and topic_b are required")
		return
	}
	result, err := a.Scout.Compare(r.Context(), topicA, topicB)
	if err != nil {
		a.Log.Warn().Err(err).Msg("niche comparison failed")
		a.error(w, http.StatusBadGateway, "upstream", "comparison failed")
		return
	}
	a.json(w, http.StatusOK, result)
}
