package vocab

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// DefaultEndToken is the GPT-2 end-of-text marker.
const DefaultEndToken = "<|endoftext|>"

// LoadGPT2 reads a HuggingFace-style vocab.json (token -> id) and
// merges.txt pair and builds a BPE tokenizer. The end-of-text token is
// resolved when present and left unset otherwise.
func LoadGPT2(vocabPath, mergesPath string) (*BPE, error) {
	rawVocab, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	var mapping map[string]int
	if err := json.Unmarshal(rawVocab, &mapping); err != nil {
		return nil, fmt.Errorf("parse vocab: %w", err)
	}
	tokens, err := orderedTokens(mapping)
	if err != nil {
		return nil, err
	}

	rawMerges, err := os.ReadFile(mergesPath)
	if err != nil {
		return nil, fmt.Errorf("read merges: %w", err)
	}
	merges := strings.Split(string(rawMerges), "\n")

	endToken := ""
	if _, ok := mapping[DefaultEndToken]; ok {
		endToken = DefaultEndToken
	}
	return NewBPE(tokens, merges, endToken)
}

// orderedTokens inverts the token->id map into an id-ordered slice,
// checking the ids form a dense [0, n) range.
func orderedTokens(mapping map[string]int) ([]string, error) {
	tokens := make([]string, len(mapping))
	seen := make([]bool, len(mapping))
	for tok, id := range mapping {
		if id < 0 || id >= len(tokens) {
			return nil, fmt.Errorf("vocab id %d for %q outside [0,%d)", id, tok, len(tokens))
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate vocab id %d", id)
		}
		seen[id] = true
		tokens[id] = tok
	}
	return tokens, nil
}
