package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/blobsim/internal/config"
)

func tinyBlob() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Vertices = 12
	cfg.Radius = 30
	cfg.SubSteps = 5
	cfg.Frames = 40
	return cfg
}

func TestNewGridSearchRejects(t *testing.T) {
	if _, err := NewGridSearch(nil, nil); err == nil {
		t.Error("expected error for no params")
	}
	if _, err := NewGridSearch([]string{"tension"}, [][]float64{{1}, {2}}); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"tension"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestSpan(t *testing.T) {
	s := Span(0, 1, 5)
	if len(s) != 5 || s[0] != 0 || s[2] != 0.5 || s[4] != 1 {
		t.Errorf("span %v", s)
	}
	if s := Span(3, 9, 1); len(s) != 1 || s[0] != 3 {
		t.Errorf("single span %v", s)
	}
}

func TestSearchVisitsGrid(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"tension", "bounce"},
		[][]float64{{0.03, 0.06}, {0.2, 0.5, 0.8}},
	)
	if err != nil {
		t.Fatal(err)
	}

	best, trials, err := g.Search(context.Background(), tinyBlob(), "drop", "jiggle")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(trials) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	if trials[0].Params["tension"] != 0.03 || trials[0].Params["bounce"] != 0.2 {
		t.Errorf("first trial %v", trials[0].Params)
	}
	for _, tr := range trials {
		if tr.Resets == 0 && tr.Value < best.Value {
			t.Errorf("trial %v beats best %v", tr, best)
		}
	}
}

func TestSearchUnknownParam(t *testing.T) {
	g, _ := NewGridSearch([]string{"stiffness"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), tinyBlob(), "drop", "jiggle"); err == nil {
		t.Error("expected unknown param error")
	}
}

func TestSearchCancelled(t *testing.T) {
	g, _ := NewGridSearch([]string{"tension"}, [][]float64{{0.03, 0.05}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, tinyBlob(), "drop", "jiggle"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
