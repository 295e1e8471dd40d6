package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/avinair/stanza/internal/decode"
	"github.com/avinair/stanza/internal/logger"
)

// Engine is the generation capability the server fronts. Satisfied by
// *decode.Generator.
type Engine interface {
	Generate(ctx context.Context, prompt string, cfg decode.Config, stream decode.StreamFunc) (*decode.Result, error)
}

// Server wires the completions endpoints onto an echo instance.
type Server struct {
	engine  Engine
	modelID string
	log     logger.Logger
	limiter *rate.Limiter
	clock   func() time.Time
}

// Config for NewServer. RequestsPerSecond <= 0 disables rate limiting.
type Config struct {
	Engine            Engine
	ModelID           string
	Log               logger.Logger
	RequestsPerSecond float64
	Burst             int
}

func NewServer(cfg Config) *Server {
	s := &Server{
		engine:  cfg.Engine,
		modelID: cfg.ModelID,
		log:     cfg.Log,
		clock:   time.Now,
	}
	if s.modelID == "" {
		s.modelID = "stanza"
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/completions", s.handleCompletions)
	e.GET("/v1/models", s.handleListModels)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}

func (s *Server) handleListModels(c *echo.Context) error {
	return c.JSON(200, map[string]any{
		"object": "list",
		"data": []map[string]any{{
			"id":       s.modelID,
			"object":   "model",
			"created":  s.clock().Unix(),
			"owned_by": "local",
		}},
	})
}
