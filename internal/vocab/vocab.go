package vocab

// Tokenizer converts between text and token ids over a fixed, bijective
// vocabulary. Implementations are immutable once constructed and safe for
// concurrent use.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
	// Size is the vocabulary size; valid ids are [0, Size).
	Size() int
	// EndID is the end-of-text token id, or -1 if the vocabulary has none.
	EndID() int
}
