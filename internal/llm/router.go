package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/frontdesk-ai/frontdesk/internal/config"
	frontdeskErrors "github.com/frontdesk-ai/frontdesk/internal/errors"
	"github.com/frontdesk-ai/frontdesk/internal/llm/contract"
	"github.com/frontdesk-ai/frontdesk/internal/logger"
	openaiProvider "github.com/frontdesk-ai/frontdesk/internal/llm/providers/openai"
)

// Router resolves a model name to its provider and executes the request,
// falling back to the configured fallback model on provider failure.
type Router struct {
	cfg       config.ModelsConfig
	providers map[string]Provider
	mu        sync.RWMutex
}

func NewRouter(cfg config.ModelsConfig) (*Router, error) {
	router := &Router{
		cfg:       cfg,
		providers: make(map[string]Provider),
	}

	if err := router.initProviders(); err != nil {
		return nil, err
	}

	return router, nil
}

func (r *Router) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	traceID := logger.GetTraceID(ctx)

	provider, resolved, err := r.resolveProvider(model)
	if err != nil {
		return nil, err
	}

	slog.Info("Routing completion request", "model", resolved, "requested", model, "trace_id", traceID)

	req.Model = resolved
	resp, err := provider.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}

	slog.Error("Provider request failed", "model", resolved, "error", err, "trace_id", traceID)

	// One fallback attempt; anything beyond that is the proxy's problem.
	if r.cfg.Fallback != "" && resolved != r.cfg.Fallback {
		if fallbackProvider, ok := r.provider(r.cfg.Fallback); ok {
			slog.Info("Attempting fallback", "from", resolved, "to", r.cfg.Fallback, "trace_id", traceID)
			req.Model = r.cfg.Fallback
			if resp, fbErr := fallbackProvider.Generate(ctx, req); fbErr == nil {
				return resp, nil
			} else {
				slog.Error("Fallback request failed", "model", r.cfg.Fallback, "error", fbErr, "trace_id", traceID)
			}
		}
	}

	return nil, frontdeskErrors.MapUpstream(err)
}

func (r *Router) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.providers))
	for name := range r.providers {
		models = append(models, name)
	}
	sort.Strings(models)

	return models
}

func (r *Router) provider(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// resolveProvider resolves a model name, routing unknown models to the
// configured default. Telnyx sends whatever model name its portal was
// configured with; an unknown name must not fail the call.
func (r *Router) resolveProvider(model string) (Provider, string, error) {
	if p, ok := r.provider(model); ok {
		return p, model, nil
	}

	if model != "" && model != r.cfg.Default {
		slog.Warn("Model not registered, using default", "model", model, "default", r.cfg.Default)
	}

	if p, ok := r.provider(r.cfg.Default); ok {
		return p, r.cfg.Default, nil
	}

	return nil, "", frontdeskErrors.NotFound(fmt.Sprintf("model %s not found", model))
}

func (r *Router) initProviders() error {
	for _, entry := range r.cfg.Registry {
		provider, err := r.createProvider(entry)
		if err != nil {
			slog.Warn("Failed to create provider", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		r.providers[entry.Name] = provider
		slog.Info("Provider initialized", "name", entry.Name, "type", entry.Provider)
	}

	if len(r.providers) == 0 && len(r.cfg.Registry) > 0 {
		return frontdeskErrors.Internal("no providers initialized")
	}

	return nil
}

func (r *Router) createProvider(entry config.ModelRegistry) (Provider, error) {
	switch entry.Provider {
	case "openai":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOpenAIBaseURL
		}

		if entry.APIKey == "" {
			return nil, frontdeskErrors.InvalidInput("API key required for OpenAI provider")
		}

		timeout, err := config.DurationOrDefault(entry.RequestTimeout, config.DefaultModelRequestTimeout)
		if err != nil {
			return nil, frontdeskErrors.InvalidInput(fmt.Sprintf("invalid request_timeout for model %s: %v", entry.Name, err))
		}

		return openaiProvider.New(entry.APIKey, baseURL, entry.Name, timeout), nil

	default:
		return nil, frontdeskErrors.InvalidInput(fmt.Sprintf("unknown provider type: %s", entry.Provider))
	}
}
