package main

import (
	"fmt"

	"github.com/avinair/stanza/internal/decode"
	"github.com/avinair/stanza/internal/logger"
	"github.com/avinair/stanza/internal/model"
	"github.com/avinair/stanza/internal/vocab"
)

// buildTokenizer loads the GPT-2 BPE files when provided and falls back
// to the byte vocabulary otherwise, so every command works without
// assets.
func buildTokenizer() (vocab.Tokenizer, error) {
	if vocabJSONPath == "" && mergesPath == "" {
		return vocab.ByteVocab{}, nil
	}
	if vocabJSONPath == "" || mergesPath == "" {
		return nil, fmt.Errorf("--vocab-json and --merges must be given together")
	}
	return vocab.LoadGPT2(vocabJSONPath, mergesPath)
}

// buildGenerator assembles the decoding stack. The model is the built-in
// deterministic demo LM sized to the tokenizer's vocabulary; real model
// weights are outside this tool's scope.
func buildGenerator(log logger.Logger) (*decode.Generator, error) {
	tok, err := buildTokenizer()
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &decode.Generator{
		Model: model.NewTinyLM(tok.Size(), int(hiddenSize), modelSeed),
		Vocab: tok,
		Log:   log,
	}, nil
}
