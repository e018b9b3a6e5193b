package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/leofalp/aibridge/core/cache"
	"github.com/leofalp/aibridge/core/normalize"
	"github.com/leofalp/aibridge/core/registry"
	"github.com/leofalp/aibridge/internal/utils"
	"github.com/leofalp/aibridge/providers/ai"
	"github.com/leofalp/aibridge/providers/observability"
)

// Store is the cache surface the dispatcher depends on. *cache.ContentCache
// satisfies it; tests substitute fakes.
type Store interface {
	Get(ctx context.Context, key cache.Key) ([]byte, cache.Entry, bool)
	Put(ctx context.Context, cap ai.Capability, key cache.Key, data []byte, format string) (cache.Entry, error)
}

// ProviderConfig is the per-provider runtime configuration the dispatcher
// needs: the credential pool (in rotation order) and an optional base URL
// override.
type ProviderConfig struct {
	APIKeys []string
	BaseURL string
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithStore attaches a content cache. Without one, every request takes the
// network path.
func WithStore(store Store) Option {
	return func(d *Dispatcher) { d.store = store }
}

// WithHTTPClient sets the HTTP client handed to every provider.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) { d.httpClient = client }
}

// Dispatcher routes capability requests to providers. Construct once at
// process start with New and share across requests; all per-request state
// lives on the stack.
type Dispatcher struct {
	registry   *registry.Registry
	store      Store
	httpClient *http.Client

	providers map[string]ai.Provider
	keys      map[string][]string
	limiters  map[string]map[ai.Capability]*rate.Limiter
	order     []string

	modelsGroup singleflight.Group
}

// New builds every registered provider once, in registration order, and
// wires its credential pool and per-capability rate limiters from the
// provider's descriptor.
func New(reg *registry.Registry, configs map[string]ProviderConfig, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		registry:  reg,
		providers: map[string]ai.Provider{},
		keys:      map[string][]string{},
		limiters:  map[string]map[ai.Capability]*rate.Limiter{},
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, id := range reg.IDs() {
		cfg := configs[id]

		keys := cfg.APIKeys
		if len(keys) == 0 {
			// A provider without configured credentials still gets one
			// attempt; backends that need no auth (on-device) pass an
			// empty key through.
			keys = []string{""}
		}

		provider, err := reg.Build(id, registry.Config{
			APIKey:     keys[0],
			BaseURL:    cfg.BaseURL,
			HTTPClient: d.httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("building provider %q: %w", id, err)
		}

		d.providers[id] = provider
		d.keys[id] = keys
		d.order = append(d.order, id)

		desc := provider.Descriptor()
		if len(cfg.APIKeys) == 0 && len(desc.CredentialKeys) > 0 {
			slog.Warn("no credentials configured for provider",
				"provider", id, "env", desc.CredentialKeys)
		}
		caps := map[ai.Capability]*rate.Limiter{}
		for capName, limit := range desc.RateLimits {
			if limit.RequestsPerMinute <= 0 {
				continue
			}
			burst := limit.Burst
			if burst <= 0 {
				burst = 1
			}
			caps[capName] = rate.NewLimiter(rate.Limit(float64(limit.RequestsPerMinute)/60.0), burst)
		}
		d.limiters[id] = caps
	}

	return d, nil
}

// Provider returns the built instance for id, if one exists.
func (d *Dispatcher) Provider(id string) (ai.Provider, bool) {
	p, ok := d.providers[id]
	return p, ok
}

// Invoke routes one capability request: cache lookup, provider/model
// selection, invocation with credential rotation, fallback, normalization,
// and cache write-back. Failures surface as the taxonomy kinds in the ai
// package, never as vendor HTTP statuses.
func (d *Dispatcher) Invoke(ctx context.Context, req ai.Request) (*AIResponse, error) {
	if !req.Capability.Valid() {
		return nil, fmt.Errorf("aibridge: invalid capability %q", req.Capability)
	}

	requestID := uuid.NewString()
	span := observability.SpanFromContext(ctx)
	if span == nil {
		if observer := observability.ObserverFromContext(ctx); observer != nil {
			var opened observability.Span
			ctx, opened = observer.StartSpan(ctx, "dispatch.Invoke")
			defer opened.End()
			span = opened
		}
	}
	if span != nil {
		span.AddEvent(observability.EventRequestStart,
			observability.String(observability.AttrRequestID, requestID),
			observability.String(observability.AttrCapability, string(req.Capability)),
		)
		defer span.AddEvent(observability.EventRequestEnd,
			observability.String(observability.AttrRequestID, requestID),
		)
	}

	candidates, err := d.selectCandidates(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i, id := range candidates {
		provider := d.providers[id]

		model, err := d.resolveModel(provider, req, i == 0)
		if err != nil {
			// An explicit model the primary provider does not recognize
			// aborts dispatch entirely; it is never retried elsewhere. A
			// fallback candidate without a usable default just yields to
			// the next one.
			if i == 0 && req.Model != "" {
				return nil, err
			}
			lastErr = err
			continue
		}

		key, cacheable := d.cacheKey(req, id, model)
		if cacheable {
			if data, entry, ok := d.store.Get(ctx, key); ok {
				// The artifact holds the backend's raw text, so replaying
				// normalization gives a hit the same shape as the original
				// network response.
				cached := fromCachedArtifact(req.Capability, requestID, id, model, data, entry)
				d.normalizeResponse(&cached.Response)
				if req.RequireStructured && !cached.Response.Structured {
					return nil, &ai.MalformedResponseError{Provider: id, Raw: cached.Response.Text}
				}
				return cached, nil
			}
		}

		response, err := d.invokeProvider(ctx, span, id, provider, req, model)
		if err != nil {
			var unsupported *ai.UnsupportedInputShapeError
			if errors.As(err, &unsupported) || isExhausted(err) {
				// Both conditions mean "try the next provider that
				// supports this capability", not a hard failure.
				lastErr = err
				if span != nil && i < len(candidates)-1 {
					span.AddEvent(observability.EventProviderFallback,
						observability.String(observability.AttrProvider, id),
						observability.Error(err),
					)
				}
				continue
			}
			return nil, err
		}

		response.Model = model

		result := &AIResponse{
			RequestID: requestID,
			Provider:  id,
		}

		// Persist before normalization: the cached artifact must carry the
		// raw text so a later hit can replay the extraction.
		if cacheable {
			if entry, ok := d.persist(ctx, req, key, response); ok {
				result.ArtifactPath = entry.Path
			}
		}

		d.normalizeResponse(response)
		if req.RequireStructured && !response.Structured {
			return nil, &ai.MalformedResponseError{Provider: id, Raw: response.Text}
		}
		result.Response = *response
		return result, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("aibridge: no registered provider supports capability %q", req.Capability)
}

// selectCandidates produces the ordered provider list for this request: the
// resolved primary first, then every other capability-supporting provider in
// registration order.
func (d *Dispatcher) selectCandidates(req ai.Request) ([]string, error) {
	var primary string
	switch {
	case req.Provider != "":
		if _, ok := d.providers[req.Provider]; !ok {
			return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, req.Provider)
		}
		primary = req.Provider
	case req.Model != "":
		if owner, ok := d.registry.ResolveOwner(req.Model); ok {
			primary = owner
		}
	}

	var candidates []string
	if primary != "" {
		candidates = append(candidates, primary)
	}
	for _, id := range d.order {
		if id == primary {
			continue
		}
		if d.providers[id].SupportsCapability(req.Capability) {
			candidates = append(candidates, id)
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("aibridge: no registered provider supports capability %q", req.Capability)
	}
	return candidates, nil
}

// resolveModel picks the model for one candidate. An explicit model only
// binds the primary candidate; fallback providers use their own defaults.
func (d *Dispatcher) resolveModel(provider ai.Provider, req ai.Request, isPrimary bool) (string, error) {
	desc := provider.Descriptor()

	if isPrimary && req.Model != "" {
		if !desc.KnowsModel(req.Model) {
			return "", &ai.InvalidModelError{Provider: desc.ID, Model: req.Model}
		}
		return req.Model, nil
	}

	model, ok := provider.DefaultModel(req.Capability)
	if !ok {
		return "", &ai.InvalidModelError{Provider: desc.ID, Model: "(no default for " + string(req.Capability) + ")"}
	}
	return model, nil
}

// invokeProvider runs the credential rotation loop for one provider: one
// attempt per configured key, rotating on transient failures only. With N
// keys it makes exactly N attempts before reporting exhaustion.
func (d *Dispatcher) invokeProvider(ctx context.Context, span observability.Span, id string, provider ai.Provider, req ai.Request, model string) (*ai.Response, error) {
	if limiter := d.limiters[id][req.Capability]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	request := req
	request.Provider = id
	request.Model = model

	keys := d.keys[id]
	var lastErr error

	for attempt, key := range keys {
		// WithAPIKey derives a per-attempt copy; the shared instance in
		// d.providers is never written, so concurrent Invokes cannot
		// bleed credentials into each other.
		authed := provider.WithAPIKey(key)

		if span != nil {
			span.SetAttributes(
				observability.String(observability.AttrProvider, id),
				observability.String(observability.AttrModel, model),
				observability.Int(observability.AttrAttempt, attempt+1),
			)
		}

		response, err := authed.SendMessage(ctx, request)
		if err == nil {
			return response, nil
		}
		lastErr = err

		var transient *ai.TransientBackendError
		if !errors.As(err, &transient) {
			// Non-retryable: propagate immediately. Retrying an invalid
			// model or a malformed request with a different key is
			// guaranteed to fail again.
			return nil, err
		}

		if attempt < len(keys)-1 && span != nil {
			span.AddEvent(observability.EventCredentialRotated,
				observability.String(observability.AttrProvider, id),
				observability.Int(observability.AttrAttempt, attempt+1),
			)
		}
	}

	return nil, &ai.CredentialsExhaustedError{Provider: id, Attempts: len(keys), Last: lastErr}
}

// normalizeResponse runs the best-effort structured extraction over the
// response text, filling Description/Structured when an embedded JSON
// payload is present.
func (d *Dispatcher) normalizeResponse(response *ai.Response) {
	if response.Text == "" || response.Structured {
		return
	}
	result := normalize.Extract(response.Text)
	if !result.Structured {
		return
	}
	response.Structured = true
	if result.Description != "" {
		response.Description = result.Description
	}
	if result.Response != "" {
		response.Text = result.Response
	}
}

// cacheKey computes the content-addressable key for the request, or reports
// that this request is not cacheable.
func (d *Dispatcher) cacheKey(req ai.Request, providerID, model string) (cache.Key, bool) {
	if d.store == nil || !req.Capability.Cacheable() {
		return "", false
	}

	selector := model
	language := ""
	format := "txt"
	switch req.Capability {
	case ai.CapabilityAudioGeneration:
		if req.Audio != nil {
			if req.Audio.Voice != "" {
				selector = req.Audio.Voice
			}
			language = req.Audio.Language
			format = req.Audio.Format
		} else {
			format = ai.AudioFormatMP3
		}
	case ai.CapabilityImageGeneration:
		format = "png"
		if req.Image != nil && req.Image.Format != "" {
			format = req.Image.Format
		}
	}

	return cache.ComputeKey(cache.KeyParams{
		Content:  utils.ToString(req.Envelope),
		Selector: selector,
		Language: language,
		Provider: providerID,
		Format:   format,
	}), true
}

// persist writes the response artifact to the cache. Cache I/O failures are
// logged and swallowed: the request already succeeded via the network.
func (d *Dispatcher) persist(ctx context.Context, req ai.Request, key cache.Key, response *ai.Response) (cache.Entry, bool) {
	data := response.Artifact()
	format := response.Format
	if len(data) == 0 {
		if response.Text == "" {
			return cache.Entry{}, false
		}
		data = []byte(response.Text)
		format = "txt"
	}
	if format == "" {
		format = "bin"
	}

	entry, err := d.store.Put(ctx, req.Capability, key, data, format)
	if err != nil {
		slog.Warn("cache write failed", "capability", string(req.Capability), "error", err.Error())
		return cache.Entry{}, false
	}
	return entry, true
}

// fromCachedArtifact rebuilds the canonical response from a cached payload.
func fromCachedArtifact(cap ai.Capability, requestID, providerID, model string, data []byte, entry cache.Entry) *AIResponse {
	response := ai.Response{Model: model, Format: entry.Format}
	switch cap {
	case ai.CapabilityAudioGeneration:
		response.AudioData = data
	case ai.CapabilityImageGeneration:
		response.ImageData = data
	default:
		response.Text = string(data)
	}
	return &AIResponse{
		Response:     response,
		RequestID:    requestID,
		Provider:     providerID,
		FromCache:    true,
		ArtifactPath: entry.Path,
	}
}

func isExhausted(err error) bool {
	var exhausted *ai.CredentialsExhaustedError
	return errors.As(err, &exhausted)
}
