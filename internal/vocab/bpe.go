package vocab

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// pair is an adjacent pair of BPE symbols considered for merging.
type pair struct {
	left, right string
}

// BPE is a GPT-2 style byte-level byte-pair-encoding tokenizer. Raw bytes
// are first mapped to printable unicode stand-ins so every byte sequence
// round-trips, then merged greedily by learned merge rank.
type BPE struct {
	encoder map[string]int
	decoder []string
	ranks   map[pair]int

	byteToRune [256]string
	runeToByte map[string]byte

	split *regexp.Regexp
	endID int

	mu    sync.Mutex
	cache map[string][]string
}

// Go regexp has no lookahead, so the original trailing-whitespace branch
// collapses into a plain \s+ match.
var gpt2Split = regexp.MustCompile(`'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+`)

// NewBPE builds a tokenizer from the vocabulary (id-ordered token strings)
// and the merge list ("left right" per line, rank by position). endToken
// names the end-of-text entry; pass "" for vocabularies without one.
func NewBPE(tokens []string, merges []string, endToken string) (*BPE, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty token list")
	}
	encoder := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		encoder[tok] = i
	}

	ranks := make(map[pair]int, len(merges))
	rank := 0
	for _, line := range merges {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, " ")
		if len(fields) != 2 {
			continue
		}
		p := pair{left: fields[0], right: fields[1]}
		if _, ok := ranks[p]; !ok {
			ranks[p] = rank
			rank++
		}
	}

	t := &BPE{
		encoder:    encoder,
		decoder:    append([]string(nil), tokens...),
		ranks:      ranks,
		runeToByte: make(map[string]byte, 256),
		split:      gpt2Split,
		endID:      -1,
		cache:      make(map[string][]string),
	}
	fillByteTables(&t.byteToRune, t.runeToByte)

	if endToken != "" {
		id, ok := encoder[endToken]
		if !ok {
			return nil, fmt.Errorf("end token %q not in vocabulary", endToken)
		}
		t.endID = id
	}
	return t, nil
}

func (t *BPE) Size() int  { return len(t.decoder) }
func (t *BPE) EndID() int { return t.endID }

// TokenString returns the raw vocabulary entry for id, or "" when out of
// range.
func (t *BPE) TokenString(id int) string {
	if id < 0 || id >= len(t.decoder) {
		return ""
	}
	return t.decoder[id]
}

func (t *BPE) Encode(text string) ([]int, error) {
	var ids []int
	for _, chunk := range t.split.FindAllString(text, -1) {
		var sb strings.Builder
		for _, b := range []byte(chunk) {
			sb.WriteString(t.byteToRune[b])
		}
		for _, sym := range t.merge(sb.String()) {
			id, ok := t.encoder[sym]
			if !ok {
				return nil, fmt.Errorf("no vocabulary entry for %q", sym)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (t *BPE) Decode(ids []int) (string, error) {
	var out []byte
	for _, id := range ids {
		if id < 0 || id >= len(t.decoder) {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		for _, r := range t.decoder[id] {
			if b, ok := t.runeToByte[string(r)]; ok {
				out = append(out, b)
			} else {
				out = append(out, string(r)...)
			}
		}
	}
	return string(out), nil
}

// merge applies the learned merges to one pre-tokenized chunk, lowest rank
// first, until no adjacent pair has a rank.
func (t *BPE) merge(chunk string) []string {
	t.mu.Lock()
	if cached, ok := t.cache[chunk]; ok {
		t.mu.Unlock()
		return cached
	}
	t.mu.Unlock()

	word := make([]string, 0, len(chunk))
	for _, r := range chunk {
		word = append(word, string(r))
	}

	for len(word) > 1 {
		bestRank := -1
		bestAt := -1
		for i := 0; i < len(word)-1; i++ {
			rank, ok := t.ranks[pair{left: word[i], right: word[i+1]}]
			if !ok {
				continue
			}
			if bestRank < 0 || rank < bestRank {
				bestRank = rank
				bestAt = i
			}
		}
		if bestAt < 0 {
			break
		}
		merged := word[bestAt] + word[bestAt+1]
		joined := word[:bestAt]
		joined = append(joined, merged)
		word = append(joined, word[bestAt+2:]...)

		// The same pair may occur later in the word; rescan from scratch.
	}

	t.mu.Lock()
	t.cache[chunk] = word
	t.mu.Unlock()
	return word
}

// fillByteTables builds the reversible byte-to-unicode mapping GPT-2 uses:
// printable bytes map to themselves, the rest to a contiguous range above
// U+0100.
func fillByteTables(toRune *[256]string, toByte map[string]byte) {
	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}
	next := 0
	for b := 0; b < 256; b++ {
		var r rune
		if printable(b) {
			r = rune(b)
		} else {
			r = rune(256 + next)
			next++
		}
		s := string(r)
		toRune[b] = s
		toByte[s] = byte(b)
	}
}
