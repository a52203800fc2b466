// Package coach turns a dashboard snapshot into an AI coaching analysis and a
// short motivational team message.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"salespulse/internal/core"
)

const (
	DefaultModel          = "gemini-3-flash-preview"
	DefaultThinkingBudget = 1024
	DefaultTimeout        = 60 * time.Second
)

// User-facing texts.
const (
	MsgNotConfigured = "Erro: Chave de API não configurada."
	MsgNoAnalysis    = "Nenhuma análise gerada."
	MsgFailed        = "Falha ao gerar análise. Verifique sua conexão ou chave de API."
)

// ErrNotConfigured is returned when no generator (API key) is available.
var ErrNotConfigured = errors.New("coach: AI API key not configured")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, thinkingBudget int32) (string, error)
}

type Config struct {
	Model          string
	ThinkingBudget int32
	Timeout        time.Duration
}

// Result is one coaching run.
type Result struct {
	Analysis    string // markdown
	TeamMessage string
}

type Coach struct {
	gen    Generator
	cfg    Config
	logger *slog.Logger
	group  singleflight.Group
}

// New returns a coach. A nil generator yields ErrNotConfigured on Analyze.
func New(gen Generator, cfg Config, logger *slog.Logger) *Coach {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coach{gen: gen, cfg: cfg, logger: logger.With("component", "coach")}
}

// Configured reports whether an AI backend is available.
func (c *Coach) Configured() bool {
	return c.gen != nil
}

// Analyze asks the model for the markdown coaching analysis.
func (c *Coach) Analyze(ctx context.Context, in Input) (string, error) {
	if c.gen == nil {
		return "", ErrNotConfigured
	}
	prompt, err := AnalysisPrompt(in)
	if err != nil {
		return "", fmt.Errorf("build analysis prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := c.gen.Generate(ctx, c.cfg.Model, prompt, c.cfg.ThinkingBudget)
	if err != nil {
		return "", fmt.Errorf("generate analysis: %w", err)
	}
	c.logger.InfoContext(ctx, "Analysis generated",
		"model", c.cfg.Model,
		"prompt_chars", len(prompt),
		"response_chars", len(text),
		"duration_ms", time.Since(start).Milliseconds())

	if strings.TrimSpace(text) == "" {
		return MsgNoAnalysis, nil
	}
	return text, nil
}

// TeamMessage returns a short motivational message, or "" on any failure.
func (c *Coach) TeamMessage(ctx context.Context, k core.KPI) string {
	if c.gen == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	text, err := c.gen.Generate(ctx, c.cfg.Model, TeamMessagePrompt(k), 0)
	if err != nil {
		c.logger.WarnContext(ctx, "Team message generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// Run produces the analysis and the team message concurrently. Concurrent
// callers share a single in-flight run. When the analysis fails the returned
// Result still carries the team message, if one was generated.
func (c *Coach) Run(ctx context.Context, in Input) (Result, error) {
	if c.gen == nil {
		return Result{}, ErrNotConfigured
	}

	ch := c.group.DoChan("coach", func() (interface{}, error) {
		// Detached so one caller leaving does not cancel the shared run.
		runCtx := context.WithoutCancel(ctx)

		var (
			res Result
			g   errgroup.Group
		)
		g.Go(func() error {
			text, err := c.Analyze(runCtx, in)
			res.Analysis = text
			return err
		})
		g.Go(func() error {
			res.TeamMessage = c.TeamMessage(runCtx, in.KPI)
			return nil
		})
		err := g.Wait()
		return res, err
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		res, _ := r.Val.(Result)
		if r.Err != nil {
			return res, r.Err
		}
		if r.Shared {
			c.logger.DebugContext(ctx, "Coach result shared with concurrent request")
		}
		return res, nil
	}
}

// UserMessage maps a Run/Analyze error to the text shown in the dashboard.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return MsgNotConfigured
	default:
		return MsgFailed
	}
}
