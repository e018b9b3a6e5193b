// Package aibridge is a unification layer over heterogeneous AI provider
// APIs: text generation, image generation and analysis, speech synthesis,
// transcription, and realtime conversation behind one capability-oriented
// surface. The Client is a thin facade over the dispatcher; all routing,
// retry, and caching behavior lives in the core packages.
package aibridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/leofalp/aibridge/config"
	"github.com/leofalp/aibridge/core/cache"
	"github.com/leofalp/aibridge/core/dispatch"
	"github.com/leofalp/aibridge/core/registry"
	"github.com/leofalp/aibridge/providers/ai"
	"github.com/leofalp/aibridge/providers/ai/anthropic"
	"github.com/leofalp/aibridge/providers/ai/device"
	"github.com/leofalp/aibridge/providers/ai/gemini"
	"github.com/leofalp/aibridge/providers/ai/openai"
)

// Client is the entry point. Construct with New (explicit dependency
// injection) or FromSettings (environment-driven defaults); share one
// instance across goroutines.
type Client struct {
	dispatcher *dispatch.Dispatcher
	store      *cache.ContentCache
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	store      *cache.ContentCache
	httpClient *http.Client
}

// WithCache attaches a content cache. Without one every request takes the
// network path.
func WithCache(store *cache.ContentCache) Option {
	return func(o *clientOptions) { o.store = store }
}

// WithHTTPClient sets the HTTP client handed to every provider.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = client }
}

// New builds a Client from an explicit registry and per-provider runtime
// configuration.
func New(reg *registry.Registry, providers map[string]dispatch.ProviderConfig, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	var dispatchOpts []dispatch.Option
	if o.store != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithStore(o.store))
	}
	if o.httpClient != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithHTTPClient(o.httpClient))
	}

	dispatcher, err := dispatch.New(reg, providers, dispatchOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{dispatcher: dispatcher, store: o.store}, nil
}

// FromSettings builds a Client wired from typed settings: the default
// registry, credential pools per provider, and a content cache unless
// disabled.
func FromSettings(settings config.Settings) (*Client, error) {
	reg := DefaultRegistry()

	providers := map[string]dispatch.ProviderConfig{}
	for _, id := range reg.IDs() {
		providers[id] = dispatch.ProviderConfig{
			APIKeys: settings.APIKeys(id),
			BaseURL: settings.BaseURL(id),
		}
	}

	var opts []Option
	if !settings.CacheDisabled {
		store, err := cache.New(settings.CacheDir, cache.WithMemoryTTL(settings.CacheMemoryTTL))
		if err != nil {
			return nil, fmt.Errorf("opening content cache: %w", err)
		}
		opts = append(opts, WithCache(store))
	}

	return New(reg, providers, opts...)
}

// DefaultRegistry returns a registry with the HTTP-backed providers
// registered in their fallback order: gemini first (broadest capability set),
// then openai, then anthropic.
func DefaultRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register("gemini", func(cfg registry.Config) ai.Provider {
		return configure(gemini.New(), cfg)
	}, "gemini-", "imagen-")
	reg.Register("openai", func(cfg registry.Config) ai.Provider {
		return configure(openai.New(), cfg)
	}, "gpt-", "o1-", "o3-", "whisper-", "tts-")
	reg.Register("anthropic", func(cfg registry.Config) ai.Provider {
		return configure(anthropic.New(), cfg)
	}, "claude-")
	return reg
}

// RegisterDevice adds the on-device backend bound to engine. It serves
// realtime conversation and live-microphone audio; register it only on
// platforms where an engine exists.
func RegisterDevice(reg *registry.Registry, engine device.Engine) {
	reg.Register("device", func(registry.Config) ai.Provider {
		return device.New(engine)
	}, "device-")
}

func configure(p ai.Provider, cfg registry.Config) ai.Provider {
	if cfg.APIKey != "" {
		p = p.WithAPIKey(cfg.APIKey)
	}
	if cfg.BaseURL != "" {
		p = p.WithBaseURL(cfg.BaseURL)
	}
	if cfg.HTTPClient != nil {
		p = p.WithHTTPClient(cfg.HTTPClient)
	}
	return p
}

// Invoke routes one fully specified request. The capability helpers below
// cover the common shapes; Invoke is the escape hatch for everything else
// (explicit provider or model, pre-built envelopes).
func (c *Client) Invoke(ctx context.Context, request ai.Request) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, request)
}

// GenerateText runs a text generation request over the envelope.
func (c *Client) GenerateText(ctx context.Context, envelope ai.Envelope) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, ai.Request{
		Capability: ai.CapabilityTextGeneration,
		Envelope:   envelope,
	})
}

// GenerateStructured runs a text generation request that must yield an
// embedded structured payload. When the reply carries none, it fails with
// *ai.MalformedResponseError instead of returning raw prose.
func (c *Client) GenerateStructured(ctx context.Context, envelope ai.Envelope) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, ai.Request{
		Capability:        ai.CapabilityTextGeneration,
		Envelope:          envelope,
		RequireStructured: true,
	})
}

// GenerateImage renders prompt into an image.
func (c *Client) GenerateImage(ctx context.Context, prompt string, params *ai.ImageParams) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, ai.Request{
		Capability: ai.CapabilityImageGeneration,
		Envelope:   ai.Envelope{Context: prompt},
		Image:      params,
	})
}

// AnalyzeImage describes or answers a question about the attached image.
func (c *Client) AnalyzeImage(ctx context.Context, attachment *ai.Attachment, question string) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, ai.Request{
		Capability: ai.CapabilityImageAnalysis,
		Envelope:   ai.Envelope{Context: question},
		Attachment: attachment,
	})
}

// Speak synthesizes text into audio.
func (c *Client) Speak(ctx context.Context, text string, params *ai.AudioParams) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, ai.Request{
		Capability: ai.CapabilityAudioGeneration,
		Envelope:   ai.Envelope{Context: text},
		Audio:      params,
	})
}

// Transcribe converts audio to text. A nil attachment requests live
// microphone transcription, which only the on-device backend serves.
func (c *Client) Transcribe(ctx context.Context, attachment *ai.Attachment, params *ai.AudioParams) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, ai.Request{
		Capability: ai.CapabilityAudioTranscription,
		Attachment: attachment,
		Audio:      params,
	})
}

// Converse runs one turn of a realtime conversation.
func (c *Client) Converse(ctx context.Context, envelope ai.Envelope) (*dispatch.AIResponse, error) {
	return c.dispatcher.Invoke(ctx, ai.Request{
		Capability: ai.CapabilityRealtimeConversation,
		Envelope:   envelope,
	})
}

// Models returns the ranked model list for providerID, refreshed remotely
// when possible.
func (c *Client) Models(ctx context.Context, providerID string) ([]string, error) {
	return c.dispatcher.Models(ctx, providerID)
}

// CacheEntries lists the persisted artifacts for one capability.
func (c *Client) CacheEntries(cap ai.Capability) ([]cache.Entry, error) {
	if c.store == nil {
		return nil, errors.New("aibridge: no cache configured")
	}
	return c.store.Entries(cap)
}

// ClearCache removes every persisted artifact for one capability.
func (c *Client) ClearCache(cap ai.Capability) error {
	if c.store == nil {
		return errors.New("aibridge: no cache configured")
	}
	return c.store.Clear(cap)
}

// Close releases the cache resources, if a cache is attached.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
