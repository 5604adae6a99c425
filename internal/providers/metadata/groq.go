package metadata

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

const groqDefaultTimeout = 30 * time.Second

type GroqOptions struct {
	Keys       *credentials.Pool
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GroqGenerator speaks the OpenAI-compatible chat completions API that Groq
// exposes. The models here are text-only, so asset bytes are ignored and the
// prompt is built from the filename.
type GroqGenerator struct {
	keys    *credentials.Pool
	model   string
	baseURL string
	client  *http.Client
}

type groqChatRequest struct {
	Model          string        `json:"model"`
	Messages       []groqMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat *groqFormat   `json:"response_format,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqFormat struct {
	Type string `json:"type"`
}

type groqChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type groqErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewGroqGenerator(opts GroqOptions) (*GroqGenerator, error) {
	if opts.Keys.Empty() {
		return nil, errors.New("groq api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: groqDefaultTimeout}
	}
	return &GroqGenerator{
		keys:    opts.Keys,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (g *GroqGenerator) Name() string { return groqProviderName }

func (g *GroqGenerator) Generate(ctx context.Context, req Request) (*domain.Metadata, error) {
	textReq := req
	textReq.Data = nil
	payload := groqChatRequest{
		Model:       g.model,
		Temperature: 0.4,
		ResponseFormat: &groqFormat{
			Type: "json_object",
		},
		Messages: []groqMessage{
			{Role: "system", Content: "You are a microstock metadata assistant that only responds with valid JSON."},
			{Role: "user", Content: buildInstruction(textReq)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode groq request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build groq request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.keys.Key())
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: domain.KindNetworkFailure, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, newStatusError(resp.StatusCode, readGroqError(resp.Body))
	}
	var out groqChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, emptyResponseError("decode groq response: " + err.Error())
	}
	if len(out.Choices) == 0 {
		return nil, emptyResponseError("groq returned no choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return nil, emptyResponseError("groq returned an empty message")
	}
	return parsePayload(text)
}

func readGroqError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "groq request failed"
	}
	var decoded groqErrorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "groq request failed"
	}
	return msg
}

var _ Generator = (*GroqGenerator)(nil)
