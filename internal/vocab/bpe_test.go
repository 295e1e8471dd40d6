package vocab

import (
	"strings"
	"testing"
)

// testBPE builds a tokenizer whose vocabulary covers every single byte,
// plus a few merged entries and an end-of-text marker.
func testBPE(t *testing.T, merges []string) *BPE {
	t.Helper()
	var toRune [256]string
	toByte := make(map[string]byte, 256)
	fillByteTables(&toRune, toByte)

	tokens := make([]string, 0, 300)
	for b := 0; b < 256; b++ {
		tokens = append(tokens, toRune[b])
	}
	for _, m := range merges {
		// A merge "a b" introduces the token "ab".
		if fields := strings.Fields(m); len(fields) == 2 {
			tokens = append(tokens, fields[0]+fields[1])
		}
	}
	tokens = append(tokens, DefaultEndToken)

	bpe, err := NewBPE(tokens, merges, DefaultEndToken)
	if err != nil {
		t.Fatalf("NewBPE: %v", err)
	}
	return bpe
}

func TestBPERoundTrip(t *testing.T) {
	bpe := testBPE(t, nil)

	cases := []string{
		"Hello, world!",
		"My trip to Yosemite was",
		"tabs\tand\nnewlines",
		"naïve café — ünïcödé",
		"",
	}
	for _, text := range cases {
		ids, err := bpe.Encode(text)
		if err != nil {
			t.Fatalf("encode %q: %v", text, err)
		}
		got, err := bpe.Decode(ids)
		if err != nil {
			t.Fatalf("decode %q: %v", text, err)
		}
		if got != text {
			t.Fatalf("round trip: got %q want %q", got, text)
		}
	}
}

func TestBPEAppliesMergesByRank(t *testing.T) {
	// "he" merges first, then "hel", so "hello" tokenizes as hel|l|o.
	bpe := testBPE(t, []string{"h e", "he l"})

	ids, err := bpe.Encode("hello")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("token count: got %d want 3 (ids=%v)", len(ids), ids)
	}
	if got := bpe.TokenString(ids[0]); got != "hel" {
		t.Fatalf("first token: got %q want %q", got, "hel")
	}
	text, err := bpe.Decode(ids)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text != "hello" {
		t.Fatalf("round trip after merges: got %q", text)
	}
}

func TestBPEEndToken(t *testing.T) {
	bpe := testBPE(t, nil)
	if bpe.EndID() != bpe.Size()-1 {
		t.Fatalf("end id: got %d want %d", bpe.EndID(), bpe.Size()-1)
	}

	noEnd, err := NewBPE([]string{"a", "b"}, nil, "")
	if err != nil {
		t.Fatalf("NewBPE: %v", err)
	}
	if noEnd.EndID() != -1 {
		t.Fatalf("expected -1 end id, got %d", noEnd.EndID())
	}

	if _, err := NewBPE([]string{"a"}, nil, "<|missing|>"); err == nil {
		t.Fatal("expected error for missing end token")
	}
}

func TestByteVocabRoundTrip(t *testing.T) {
	var v ByteVocab
	text := "I like basketball \x00\xff"
	ids, err := v.Encode(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := v.Decode(ids)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != text {
		t.Fatalf("round trip: got %q want %q", got, text)
	}
	if _, err := v.Decode([]int{300}); err == nil {
		t.Fatal("expected error for out-of-range id")
	}
}
