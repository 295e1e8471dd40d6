package vocab

import "fmt"

// ByteVocab is a trivial 257-entry vocabulary: one token per byte value
// plus a final end-of-text token. It needs no asset files, which makes it
// the default for the demo model and for tests. Every string round-trips.
type ByteVocab struct{}

const byteVocabSize = 257

func (ByteVocab) Size() int  { return byteVocabSize }
func (ByteVocab) EndID() int { return byteVocabSize - 1 }

func (ByteVocab) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	for _, b := range []byte(text) {
		ids = append(ids, int(b))
	}
	return ids, nil
}

func (v ByteVocab) Decode(ids []int) (string, error) {
	out := make([]byte, 0, len(ids))
	for _, id := range ids {
		if id < 0 || id >= byteVocabSize {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		if id == v.EndID() {
			continue
		}
		out = append(out, byte(id))
	}
	return string(out), nil
}
