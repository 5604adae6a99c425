package insight

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestOfflineScoutTrendShape(t *testing.T) {
	scout := NewOfflineScout()
	trends, err := scout.Trends(context.Background(), TrendDaily, "")
	if err != nil {
		t.Fatalf("Trends returned error: %v", err)
	}
	if len(trends) != 6 {
		t.Fatalf("len(trends) = %d, want 6", len(trends))
	}
	for _, tr := range trends {
		if tr.ID == "" || tr.Topic == "" {
			t.Fatalf("trend missing id or topic: %+v", tr)
		}
		if len(tr.TrendHistory) != 7 {
			t.Fatalf("len(TrendHistory) = %d, want 7", len(tr.TrendHistory))
		}
		if tr.PopularityScore < 75 || tr.PopularityScore > 99 {
			t.Fatalf("PopularityScore = %d, want 75..99", tr.PopularityScore)
		}
		if tr.Competition != "Low" && tr.Competition != "Medium" {
			t.Fatalf("Competition = %q, want Low or Medium", tr.Competition)
		}
	}
}

func TestOfflineScoutConcurrentCalls(t *testing.T) {
	scout := NewOfflineScout()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := scout.Trends(context.Background(), TrendDaily, ""); err != nil {
					t.Errorf("Trends returned error: %v", err)
					return
				}
				if _, err := scout.Compare(context.Background(), "Drones", "Cats"); err != nil {
					t.Errorf("Compare returned error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestOfflineScoutCategoryTrends(t *testing.T) {
	scout := NewOfflineScout()
	trends, err := scout.Trends(context.Background(), TrendCategory, "Food")
	if err != nil {
		t.Fatalf("Trends returned error: %v", err)
	}
	if len(trends) != 4 {
		t.Fatalf("len(trends) = %d, want 4", len(trends))
	}
	if trends[0].Category != "Food" {
		t.Fatalf("Category = %q, want %q", trends[0].Category, "Food")
	}
}

func TestOfflineScoutCompareDeclaresWinner(t *testing.T) {
	scout := NewOfflineScout()
	result, err := scout.Compare(context.Background(), "Drones", "Cats")
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if result.Winner != result.TopicA.Name && result.Winner != result.TopicB.Name {
		t.Fatalf("Winner = %q, want one of the compared topics", result.Winner)
	}
}

func TestOfflineScoutBulkPrompts(t *testing.T) {
	scout := NewOfflineScout()
	prompts, err := scout.BulkPrompts(context.Background(), "street food", 4, "Cinematic", "Wide shot")
	if err != nil {
		t.Fatalf("BulkPrompts returned error: %v", err)
	}
	if len(prompts) != 4 {
		t.Fatalf("len(prompts) = %d, want 4", len(prompts))
	}
	seen := map[string]bool{}
	for _, p := range prompts {
		if !strings.Contains(p, "street food") {
			t.Fatalf("prompt %q does not mention the topic", p)
		}
		if seen[p] {
			t.Fatalf("duplicate prompt %q", p)
		}
		seen[p] = true
	}
}
