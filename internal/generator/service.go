// Package generator drafts NPCs with a generative-text provider, trying a
// prioritized list of models until one answers.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veritasos/ordem-backend/internal/apperr"
	"github.com/veritasos/ordem-backend/internal/fallback"
	"github.com/veritasos/ordem-backend/internal/tokens"
)

// DefaultModels is the fallback order used when no override is configured.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
}

const DefaultTimeout = 30 * time.Second

const invalidResponseMessage = "response from generator invalid"

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not configured")

// Provider generates text for a prompt with a named model.
type Provider interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ContextSource renders the campaign context of a table.
type ContextSource interface {
	CampaignContext(ctx context.Context, rawTableToken string) (string, error)
}

type Options struct {
	APIKey  string
	Models  []string
	Timeout time.Duration
}

type Service struct {
	provider Provider
	contexts ContextSource
	apiKey   string
	models   []string
	timeout  time.Duration
}

// Result is a validated NPC and the model that produced it.
type Result struct {
	NPC   *GeneratedNPC
	Model string
}

func NewService(provider Provider, contexts ContextSource, opts Options) *Service {
	models := opts.Models
	if len(models) == 0 {
		models = DefaultModels
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		provider: provider,
		contexts: contexts,
		apiKey:   opts.APIKey,
		models:   models,
		timeout:  timeout,
	}
}

// ResolveModels picks the model list: a non-empty override wins as a single
// entry, then a configured list, then DefaultModels.
func ResolveModels(override string, configured []string) []string {
	if m := strings.TrimSpace(override); m != "" {
		return []string{m}
	}
	var out []string
	for _, m := range configured {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	if len(out) > 0 {
		return out
	}
	return append([]string(nil), DefaultModels...)
}

func (s *Service) Models() []string {
	return append([]string(nil), s.models...)
}

// Generate drafts an NPC for theme in the campaign of tableToken. Nothing is
// persisted.
func (s *Service) Generate(ctx context.Context, theme, tableToken string) (*Result, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, apperr.Validation("theme is required")
	}
	if strings.TrimSpace(tableToken) == "" {
		return nil, apperr.Validation("table_token is required")
	}
	if !tokens.IsValidFormat(tableToken) {
		return nil, apperr.Validation("Invalid table token format")
	}
	if s.apiKey == "" {
		return nil, apperr.Configuration("Generator is not configured", ErrMissingAPIKey)
	}

	campaignContext, err := s.contexts.CampaignContext(ctx, tableToken)
	if err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	prompt := BuildPrompt(campaignContext, theme)
	start := time.Now()

	raw, model, err := fallback.Run(ctx, s.models, func(ctx context.Context, model string) (string, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		log.Printf("[generator] %s trying model %s", reqID, model)
		return s.provider.Generate(attemptCtx, model, prompt)
	})
	if err != nil {
		return nil, s.classify(reqID, model, err)
	}
	log.Printf("[generator] %s model %s answered in %dms", reqID, model, time.Since(start).Milliseconds())

	npc, err := ParseNPC(raw)
	if err != nil {
		if errors.Is(err, ErrUnparseable) {
			log.Printf("[generator] %s unparseable output from %s: %v\nraw: %s", reqID, model, err, raw)
		} else {
			log.Printf("[generator] %s invalid output shape from %s: %v\nraw: %s", reqID, model, err, raw)
		}
		return nil, apperr.Upstream(invalidResponseMessage, err)
	}

	return &Result{NPC: npc, Model: model}, nil
}

func (s *Service) classify(reqID, model string, err error) error {
	var exhausted *fallback.ExhaustedError
	var upstream *UpstreamError

	switch {
	case errors.As(err, &exhausted):
		log.Printf("[generator] %s %v", reqID, err)
		return apperr.Upstream(fmt.Sprintf("No generator model available (tried: %s)", strings.Join(exhausted.Attempted, ", ")), err)
	case errors.As(err, &upstream):
		log.Printf("[generator] %s model %s failed: %v", reqID, model, err)
		return apperr.Upstream("Generator request failed: "+upstream.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("[generator] %s model %s timed out", reqID, model)
		return apperr.Upstream("Generator request timed out", err)
	default:
		log.Printf("[generator] %s model %s failed: %v", reqID, model, err)
		return apperr.Upstream("Generator request failed", err)
	}
}
