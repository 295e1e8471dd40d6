package model

import (
	"context"
	"testing"
)

func TestTinyLMDeterministic(t *testing.T) {
	a := NewTinyLM(64, 16, 7)
	b := NewTinyLM(64, 16, 7)

	seq := []int{3, 1, 4, 1, 5}
	pa, err := a.Infer(context.Background(), seq)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	pb, err := b.Infer(context.Background(), seq)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if len(pa.Logits) != 64 {
		t.Fatalf("logits length: got %d want 64", len(pa.Logits))
	}
	for i := range pa.Logits {
		if pa.Logits[i] != pb.Logits[i] {
			t.Fatalf("logits diverge at %d: %v vs %v", i, pa.Logits[i], pb.Logits[i])
		}
	}
}

func TestTinyLMPrefixSensitivity(t *testing.T) {
	m := NewTinyLM(64, 16, 7)

	p1, err := m.Infer(context.Background(), []int{1, 2, 3})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	p2, err := m.Infer(context.Background(), []int{3, 2, 1})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	same := true
	for i := range p1.Logits {
		if p1.Logits[i] != p2.Logits[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different prefixes to produce different logits")
	}
}

func TestTinyLMRejectsBadInput(t *testing.T) {
	m := NewTinyLM(8, 4, 1)

	if _, err := m.Infer(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty sequence")
	}
	if _, err := m.Infer(context.Background(), []int{8}); err == nil {
		t.Fatal("expected error for out-of-vocabulary token")
	}
	if _, err := m.Infer(context.Background(), []int{-1}); err == nil {
		t.Fatal("expected error for negative token")
	}
}
