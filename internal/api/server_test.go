package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/avinair/stanza/internal/decode"
)

type stubEngine struct {
	text string
	err  error
	// streamless mimics beam search, which never invokes the callback.
	streamless bool
	last       decode.Config
}

func (e *stubEngine) Generate(ctx context.Context, prompt string, cfg decode.Config, stream decode.StreamFunc) (*decode.Result, error) {
	e.last = cfg
	if e.err != nil {
		return nil, e.err
	}
	if stream != nil && !e.streamless {
		for _, r := range e.text {
			stream(string(r))
		}
	}
	return &decode.Result{
		Text:         prompt + e.text,
		FinishReason: decode.FinishLength,
		Stats:        decode.Stats{PromptTokens: len(prompt), TokensGenerated: len(e.text)},
	}, nil
}

func newTestEcho(engine Engine) *echo.Echo {
	e := echo.New()
	NewServer(Config{Engine: engine}).Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCompletionsSync(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{text: " world"}
	e := newTestEcho(engine)

	rec := doJSON(t, e, http.MethodPost, "/v1/completions",
		`{"prompt":"hello","max_length":32,"sampler":"top-k","top_k":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}

	var resp CompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Text != "hello world" {
		t.Fatalf("choices: %+v", resp.Choices)
	}
	if !strings.HasPrefix(resp.ID, "cmpl-") {
		t.Fatalf("id: %q", resp.ID)
	}
	if resp.Usage.TotalTokens != resp.Usage.PromptTokens+resp.Usage.CompletionTokens {
		t.Fatalf("usage: %+v", resp.Usage)
	}
	if engine.last.MaxLength != 32 || engine.last.TopK != 3 || engine.last.Strategy != decode.KindTopK {
		t.Fatalf("config not forwarded: %+v", engine.last)
	}
}

func TestCompletionsValidation(t *testing.T) {
	t.Parallel()

	e := newTestEcho(&stubEngine{})

	cases := []struct {
		name string
		body string
	}{
		{"missing prompt", `{"max_length":10}`},
		{"bad sampler", `{"prompt":"x","max_length":10,"sampler":"nucleus"}`},
		{"malformed json", `{"prompt":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/v1/completions", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCompletionsErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{decode.ErrInvalidConfig, http.StatusBadRequest},
		{decode.ErrTimeout, http.StatusGatewayTimeout},
		{decode.ErrModelInference, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := newTestEcho(&stubEngine{err: tc.err})
		rec := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"x","max_length":10}`)
		if rec.Code != tc.want {
			t.Fatalf("%v: status %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestCompletionsStream(t *testing.T) {
	t.Parallel()

	e := newTestEcho(&stubEngine{text: "ab"})
	rec := doJSON(t, e, http.MethodPost, "/v1/completions",
		`{"prompt":"x","max_length":10,"stream":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"text":"a"`) || !strings.Contains(body, `"text":"b"`) {
		t.Fatalf("missing token chunks: %s", body)
	}
	if !strings.Contains(body, "data: [DONE]") {
		t.Fatalf("missing DONE sentinel: %s", body)
	}
}

func TestCompletionsStreamBeam(t *testing.T) {
	t.Parallel()

	e := newTestEcho(&stubEngine{text: " world", streamless: true})
	rec := doJSON(t, e, http.MethodPost, "/v1/completions",
		`{"prompt":"hello","max_length":10,"sampler":"beam","stream":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"text":"hello world"`) {
		t.Fatalf("final chunk missing completion text: %s", body)
	}
	if !strings.Contains(body, "data: [DONE]") {
		t.Fatalf("missing DONE sentinel: %s", body)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	e := echo.New()
	NewServer(Config{Engine: &stubEngine{}, RequestsPerSecond: 0.001, Burst: 1}).Register(e)

	first := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"x","max_length":10}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: %d", first.Code)
	}
	second := doJSON(t, e, http.MethodPost, "/v1/completions", `{"prompt":"x","max_length":10}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d, want 429", second.Code)
	}
}

func TestListModelsAndHealth(t *testing.T) {
	t.Parallel()

	e := newTestEcho(&stubEngine{})
	rec := doJSON(t, e, http.MethodGet, "/v1/models", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"stanza"`) {
		t.Fatalf("models: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}
