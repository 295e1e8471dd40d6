package decode

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateBatch(t *testing.T) {
	g := demoGenerator()
	prompts := []string{"alpha", "beta", "gamma"}

	results, err := g.GenerateBatch(context.Background(), prompts, Config{
		MaxLength: 24,
		Strategy:  KindTopK,
		Seed:      11,
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) != len(prompts) {
		t.Fatalf("result count: %d", len(results))
	}
	for i, res := range results {
		if res == nil {
			t.Fatalf("nil result for prompt %d", i)
		}
		if !strings.HasPrefix(res.Text, prompts[i]) {
			t.Fatalf("result %d does not extend its prompt: %q", i, res.Text)
		}
	}
}

func TestGenerateBatchReproducible(t *testing.T) {
	g := demoGenerator()
	prompts := []string{"one", "two"}
	cfg := Config{MaxLength: 24, Strategy: KindTopK, Seed: 5}

	a, err := g.GenerateBatch(context.Background(), prompts, cfg)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	b, err := g.GenerateBatch(context.Background(), prompts, cfg)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for i := range prompts {
		if a[i].Text != b[i].Text {
			t.Fatalf("prompt %d diverged across identical batches", i)
		}
	}
}

func TestGenerateBatchPartialFailure(t *testing.T) {
	g := demoGenerator()
	prompts := []string{"fine", ""} // empty prompt is invalid

	results, err := g.GenerateBatch(context.Background(), prompts, Config{
		MaxLength: 24,
	})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig in joined error, got %v", err)
	}
	if results[0] == nil {
		t.Fatal("healthy prompt should still complete")
	}
	if results[1] != nil {
		t.Fatal("failed prompt should have nil result")
	}
}
