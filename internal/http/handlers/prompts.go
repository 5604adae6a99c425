package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

const maxBulkPrompts = 20

type bulkPromptsRequest struct {
	Topic       string `json:"topic"`
	Count       int    `json:"count"`
	Style       string `json:"style"`
	Composition string `json:"composition"`
}

// BulkPrompts generates a batch of AI image prompts for a topic.
func (a *App) BulkPrompts(w http.ResponseWriter, r *http.Request) {
	if a.Scout == nil {
		a.error(w, http.StatusServiceUnavailable, "no_scout", "prompt generation is not configured")
		return
	}
	var req bulkPromptsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Topic) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic is required")
		return
	}
	count := req.Count
	if count < 1 {
		count = 1
	}
	if count > maxBulkPrompts {
		count = maxBulkPrompts
	}
	prompts, err := a.Scout.BulkPrompts(r.Context(), strings.TrimSpace(req.Topic), count, req.Style, req.Composition)
	if err != nil {
		a.Log.Warn().Err(err).Str("topic", req.Topic).Msg("bulk prompt generation failed")
		a.error(w, http.StatusBadGateway, "upstream", "prompt generation failed")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"prompts": prompts})
}
