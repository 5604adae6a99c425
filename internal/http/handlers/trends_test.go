package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"stockstudio/internal/domain"
	"stockstudio/internal/providers/insight"
)

type fakeScout struct {
	trends  func(kind insight.TrendKind, category string) ([]domain.Trend, error)
	analyze func(topic string) (*domain.TopicAnalysis, error)
	compare func(a, b string) (*domain.NicheComparison, error)
	bulk    func(topic string, count int) ([]string, error)
}

func (f fakeScout) Trends(ctx context.Context, kind insight.TrendKind, category string) ([]domain.Trend, error) {
	return f.trends(kind, category)
}

func (f fakeScout) Analyze(ctx context.Context, topic string) (*domain.TopicAnalysis, error) {
	return f.analyze(topic)
}

func (f fakeScout) Compare(ctx context.Context, a, b string) (*domain.NicheComparison, error) {
	return f.compare(a, b)
}

func (f fakeScout) Prompt(ctx context.Context, topic, style, composition string) (string, error) {
	return "", errors.New("not implemented")
}

func (f fakeScout) BulkPrompts(ctx context.Context, topic string, count int, style, composition string) ([]string, error) {
	return f.bulk(topic, count)
}

func trendsRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1/trends", func(r chi.Router) {
		r.Get("/", app.Trends)
		r.Post("/analyze", app.AnalyzeTopic)
		r.Post("/battle", app.BattleNiches)
	})
	r.Post("/v1/prompts/bulk", app.BulkPrompts)
	return r
}

func TestTrendsEndpoint(t *testing.T) {
	app, _, _ := newTestApp(okGenerator())
	var gotKind insight.TrendKind
	app.Scout = fakeScout{trends: func(kind insight.TrendKind, category string) ([]domain.Trend, error) {
		gotKind = kind
		return []domain.Trend{{ID: "t1", Topic: "Vertical Farming"}}, nil
	}}
	router := trendsRouter(app)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trends/?kind=tshirt", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotKind != insight.TrendTShirt {
		t.Fatalf("kind = %q, want tshirt", gotKind)
	}
	var out struct {
		Trends []domain.Trend `json:"trends"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Trends) != 1 || out.Trends[0].Topic != "Vertical Farming" {
		t.Fatalf("trends = %+v", out.Trends)
	}
}

func TestTrendsValidation(t *testing.T) {
	app, _, _ := newTestApp(okGenerator())
	app.Scout = fakeScout{trends: func(kind insight.TrendKind, category string) ([]domain.Trend, error) {
		return nil, nil
	}}
	router := trendsRouter(app)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trends/?kind=weekly", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trends/?kind=category", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("category without name = %d, want 400", rec.Code)
	}
}

func TestTrendsWithoutScout(t *testing.T) {
	app, _, _ := newTestApp(okGenerator())
	router := trendsRouter(app)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trends/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	app, _, _ := newTestApp(okGenerator())
	app.Scout = fakeScout{analyze: func(topic string) (*domain.TopicAnalysis, error) {
		return &domain.TopicAnalysis{OriginalQuery: topic, NichePath: "Commercial > " + topic}, nil
	}}
	router := trendsRouter(app)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trends/analyze", strings.NewReader(`{"topic":"drone photography"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "drone photography") {
		t.Fatalf("body = %s, want topic echoed", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trends/analyze", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty topic = %d, want 400", rec.Code)
	}
}

func TestBattleEndpoint(t *testing.T) {
	app, _, _ := newTestApp(okGenerator())
	app.Scout = fakeScout{compare: func(a, b string) (*domain.NicheComparison, error) {
		return &domain.NicheComparison{Winner: a}, nil
	}}
	router := trendsRouter(app)

	body := `{"topic_a": "Cats", "topic_b": "Dogs"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trends/battle", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"winner":"Cats"`) {
		t.Fatalf("body = %s, want winner Cats", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trends/battle", strings.NewReader(`{"topic_a":"Cats"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing topic = %d, want 400", rec.Code)
	}
}

func TestBulkPromptsEndpoint(t *testing.T) {
	app, _, _ := newTestApp(okGenerator())
	var gotCount int
	app.Scout = fakeScout{bulk: func(topic string, count int) ([]string, error) {
		gotCount = count
		return []string{"p1", "p2"}, nil
	}}
	router := trendsRouter(app)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/prompts/bulk", strings.NewReader(`{"topic":"coffee","count":99}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotCount != maxBulkPrompts {
		t.Fatalf("count = %d, want capped at %d", gotCount, maxBulkPrompts)
	}
}
