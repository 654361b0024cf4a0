package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritasos/ordem-backend/internal/apperr"
)

const testTableToken = "a1b2c3d4e5f60718a1b2c3d4e5f60718"

type fakeProvider struct {
	mu      sync.Mutex
	calls   []string
	prompts []string
	answer  func(model string) (string, error)
}

func (f *fakeProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, model)
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.answer(model)
}

type fakeContexts struct {
	text string
	err  error
}

func (f fakeContexts) CampaignContext(context.Context, string) (string, error) {
	return f.text, f.err
}

func notFound(model string) error {
	return &UpstreamError{Model: model, StatusCode: 404, Status: "NOT_FOUND"}
}

func newTestService(p Provider, opts Options) *Service {
	if opts.APIKey == "" {
		opts.APIKey = "key"
	}
	return NewService(p, fakeContexts{text: "Mesa: Teste"}, opts)
}

func TestGenerateFallsBackOnModelNotFound(t *testing.T) {
	p := &fakeProvider{answer: func(model string) (string, error) {
		if model == "gemini-1.5-pro" {
			return "```json\n" + validNPC + "\n```", nil
		}
		return "", notFound(model)
	}}
	svc := newTestService(p, Options{})

	res, err := svc.Generate(context.Background(), "cultista", testTableToken)
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", res.Model)
	assert.Equal(t, "Dra. Helena Prado", res.NPC.Name)
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}, p.calls)
	assert.Contains(t, p.prompts[0], "Mesa: Teste")
	assert.Contains(t, p.prompts[0], "cultista")
}

func TestGenerateAbortsOnOtherProviderErrors(t *testing.T) {
	p := &fakeProvider{answer: func(model string) (string, error) {
		return "", &UpstreamError{Model: model, StatusCode: 403, Status: "PERMISSION_DENIED", Message: "API key not valid"}
	}}
	svc := newTestService(p, Options{})

	_, err := svc.Generate(context.Background(), "cultista", testTableToken)
	require.Error(t, err)

	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Len(t, p.calls, 1)
}

func TestGenerateExhaustionNamesEveryModel(t *testing.T) {
	p := &fakeProvider{answer: func(model string) (string, error) { return "", notFound(model) }}
	svc := newTestService(p, Options{})

	_, err := svc.Generate(context.Background(), "cultista", testTableToken)
	require.Error(t, err)

	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	for _, m := range DefaultModels {
		assert.Contains(t, err.Error(), m)
	}
	assert.Equal(t, DefaultModels, p.calls)
}

func TestGenerateValidatesBeforeNetwork(t *testing.T) {
	p := &fakeProvider{answer: func(string) (string, error) {
		t.Fatal("provider should not be called")
		return "", nil
	}}

	cases := []struct {
		name  string
		svc   *Service
		theme string
		token string
		kind  apperr.Kind
	}{
		{"empty theme", newTestService(p, Options{}), "   ", testTableToken, apperr.KindValidation},
		{"empty token", newTestService(p, Options{}), "cultista", "", apperr.KindValidation},
		{"bad token", newTestService(p, Options{}), "cultista", "xyz", apperr.KindValidation},
		{"missing key", NewService(p, fakeContexts{}, Options{}), "cultista", testTableToken, apperr.KindConfiguration},
		{"missing key with empty theme", NewService(p, fakeContexts{}, Options{}), "", testTableToken, apperr.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.Generate(context.Background(), tc.theme, tc.token)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}
	assert.Empty(t, p.calls)
}

func TestGenerateContextErrorPassesThrough(t *testing.T) {
	p := &fakeProvider{answer: func(string) (string, error) { return validNPC, nil }}
	svc := NewService(p, fakeContexts{err: apperr.NotFound("Table not found")}, Options{APIKey: "key"})

	_, err := svc.Generate(context.Background(), "cultista", testTableToken)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, p.calls)
}

func TestGenerateInvalidOutput(t *testing.T) {
	for _, raw := range []string{"não é json", `{"name":"","nex":1}`} {
		p := &fakeProvider{answer: func(string) (string, error) { return raw, nil }}
		svc := newTestService(p, Options{})

		_, err := svc.Generate(context.Background(), "cultista", testTableToken)
		require.Error(t, err)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
		assert.Equal(t, invalidResponseMessage, err.(*apperr.Error).Message)
	}
}

func TestGenerateAttemptTimeout(t *testing.T) {
	p := &fakeProvider{}
	p.answer = func(string) (string, error) { return "", fmt.Errorf("gemini request: %w", context.DeadlineExceeded) }
	svc := newTestService(p, Options{Timeout: time.Millisecond})

	_, err := svc.Generate(context.Background(), "cultista", testTableToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Len(t, p.calls, 1)
}

func TestResolveModels(t *testing.T) {
	assert.Equal(t, []string{"gemini-x"}, ResolveModels(" gemini-x ", []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, ResolveModels("", []string{"a", " ", "b"}))
	assert.Equal(t, DefaultModels, ResolveModels("", nil))
}

func TestServiceWithOverrideTriesSingleModel(t *testing.T) {
	p := &fakeProvider{answer: func(model string) (string, error) { return "", notFound(model) }}
	svc := newTestService(p, Options{Models: ResolveModels("gemini-custom", nil)})

	_, err := svc.Generate(context.Background(), "cultista", testTableToken)
	require.Error(t, err)
	assert.Equal(t, []string{"gemini-custom"}, p.calls)
	assert.Contains(t, err.Error(), "gemini-custom")
}
