package metadata

import (
	"bytes"
	"context"
	"encoding/base64"
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

const (
	geminiDefaultTimeout = 45 * time.Second
	geminiProviderName   = "gemini"
	groqProviderName     = "groq"
	staticProviderName   = "static"
)

type GeminiOptions struct {
	Keys       *credentials.Pool
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiGenerator calls the Gemini generateContent endpoint with the asset
// image inlined and a response schema forcing structured JSON output. Each
// call picks a key from the pool so a run rotates across credentials.
type GeminiGenerator struct {
	keys    *credentials.Pool
	model   string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature      float64       `json:"temperature,omitempty"`
	CandidateCount   int           `json:"candidateCount,omitempty"`
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiSchema struct {
	Type       string                   `json:"type"`
	Properties map[string]*geminiSchema `json:"properties,omitempty"`
	Items      *geminiSchema            `json:"items,omitempty"`
	Required   []string                 `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if opts.Keys.Empty() {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiGenerator{
		keys:    opts.Keys,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (g *GeminiGenerator) Name() string { return geminiProviderName }

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*domain.Metadata, error) {
	parts := []geminiPart{{Text: buildInstruction(req)}}
	if len(req.Data) > 0 {
		mime := req.MimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mime,
			Data:     base64.StdEncoding.EncodeToString(req.Data),
		}})
	}
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.4,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
			ResponseSchema:   metadataSchema(req.Config),
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.keys.Key())
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: domain.KindNetworkFailure, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, newStatusError(resp.StatusCode, readGeminiError(resp.Body))
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, emptyResponseError("decode gemini response: " + err.Error())
	}
	text := extractGeminiText(out)
	if text == "" {
		return nil, emptyResponseError("gemini returned no candidates")
	}
	return parsePayload(text)
}

func metadataSchema(cfg domain.BatchConfig) *geminiSchema {
	req := cfg.Platform.Requires()
	required := make([]string, 0, 3)
	if req.Title {
		required = append(required, "title")
	}
	if req.Description {
		required = append(required, "description")
	}
	if req.Keywords {
		required = append(required, "keywords")
	}
	return &geminiSchema{
		Type: "OBJECT",
		Properties: map[string]*geminiSchema{
			"title":       {Type: "STRING"},
			"description": {Type: "STRING"},
			"keywords":    {Type: "ARRAY", Items: &geminiSchema{Type: "STRING"}},
		},
		Required: required,
	}
}

func extractGeminiText(out geminiResponse) string {
	for _, candidate := range out.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func readGeminiError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "gemini request failed"
	}
	var decoded geminiErrorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "gemini request failed"
	}
	return msg
}

var _ Generator = (*GeminiGenerator)(nil)
