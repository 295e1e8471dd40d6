package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/avinair/stanza/internal/decode"
)

// CompletionRequest is the body of POST /v1/completions. Sampler fields
// left unset fall back to the engine defaults (top-k, k=5).
type CompletionRequest struct {
	Prompt        string   `json:"prompt"`
	MaxLength     int      `json:"max_length"`
	Sampler       string   `json:"sampler,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	BeamWidth     *int     `json:"beam_width,omitempty"`
	Alpha         *float64 `json:"alpha,omitempty"`
	PenaltyWindow *int     `json:"penalty_window,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
	TimeoutMS     *int64   `json:"timeout_ms,omitempty"`
	Stream        *bool    `json:"stream,omitempty"`
	Model         string   `json:"model,omitempty"`
}

type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   CompletionUsage    `json:"usage"`
}

type CompletionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionChunk is one streaming SSE event.
type CompletionChunk struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
}

func (s *Server) handleCompletions(c *echo.Context) error {
	if s.limiter != nil && !s.limiter.Allow() {
		return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "request rate exceeded")
	}

	req, err := decodeJSON[CompletionRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Prompt == "" {
		return writeBadRequest(c, "prompt is required")
	}

	cfg, err := requestConfig(req)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	completionID := "cmpl-" + uuid.NewString()
	created := s.clock().Unix()
	modelID := req.Model
	if modelID == "" {
		modelID = s.modelID
	}

	if req.Stream != nil && *req.Stream {
		return s.streamCompletion(c, req, cfg, completionID, created, modelID)
	}

	res, err := s.engine.Generate(c.Request().Context(), req.Prompt, cfg, nil)
	if err != nil {
		return writeGenerateError(c, err)
	}
	s.log.Info("completion",
		"id", completionID,
		"sampler", string(cfg.Strategy),
		"tokens", res.Stats.TokensGenerated,
		"tps", res.Stats.TPS)

	return c.JSON(http.StatusOK, CompletionResponse{
		ID:      completionID,
		Object:  "text_completion",
		Created: created,
		Model:   modelID,
		Choices: []CompletionChoice{{
			Index:        0,
			Text:         res.Text,
			FinishReason: string(res.FinishReason),
		}},
		Usage: CompletionUsage{
			PromptTokens:     res.Stats.PromptTokens,
			CompletionTokens: res.Stats.TokensGenerated,
			TotalTokens:      res.Stats.PromptTokens + res.Stats.TokensGenerated,
		},
	})
}

func (s *Server) streamCompletion(c *echo.Context, req CompletionRequest, cfg decode.Config, completionID string, created int64, modelID string) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")

	flusher, ok := res.(http.Flusher)
	if !ok {
		return writeBadRequest(c, "streaming unsupported")
	}

	chunk := func(text, finish string) CompletionChunk {
		return CompletionChunk{
			ID:      completionID,
			Object:  "text_completion.chunk",
			Created: created,
			Model:   modelID,
			Choices: []CompletionChoice{{Index: 0, Text: text, FinishReason: finish}},
		}
	}

	streamed := false
	result, err := s.engine.Generate(c.Request().Context(), req.Prompt, cfg, func(tok string) {
		streamed = true
		_ = sendSSE(res, chunk(tok, ""))
		flusher.Flush()
	})
	if err != nil {
		// Streamed tokens are advisory; the error event is authoritative.
		_ = sendSSE(res, map[string]any{"error": err.Error()})
		flusher.Flush()
		return nil
	}

	// Beam search emits no per-token callbacks, so when nothing was
	// streamed the final chunk carries the whole completion text.
	finalText := ""
	if !streamed {
		finalText = result.Text
	}
	_ = sendSSE(res, chunk(finalText, string(result.FinishReason)))
	_, _ = fmt.Fprint(res, "data: [DONE]\n\n")
	flusher.Flush()
	return nil
}

// requestConfig maps request fields onto a decode.Config, leaving unset
// fields zero so the engine applies its own defaults.
func requestConfig(req CompletionRequest) (decode.Config, error) {
	kind, err := decode.ParseKind(req.Sampler)
	if err != nil {
		return decode.Config{}, err
	}
	cfg := decode.Config{
		MaxLength: req.MaxLength,
		Strategy:  kind,
	}
	if req.TopK != nil {
		cfg.TopK = *req.TopK
	}
	if req.BeamWidth != nil {
		cfg.BeamWidth = *req.BeamWidth
	}
	if req.Alpha != nil {
		cfg.Alpha = *req.Alpha
	}
	if req.PenaltyWindow != nil {
		cfg.PenaltyWindow = *req.PenaltyWindow
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.TimeoutMS != nil {
		cfg.Timeout = time.Duration(*req.TimeoutMS) * time.Millisecond
	}
	return cfg, nil
}

// writeGenerateError maps the engine's error taxonomy onto HTTP statuses.
func writeGenerateError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, decode.ErrInvalidConfig):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	case errors.Is(err, decode.ErrTimeout):
		return writeError(c, http.StatusGatewayTimeout, "timeout_error", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}
