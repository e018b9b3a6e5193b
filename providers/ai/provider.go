package ai

import (
	"context"
	"net/http"
)

// Provider is the contract every backend implementation must satisfy. It
// covers capability introspection, model selection, history extraction, and
// message dispatch. The capability switch lives inside each provider:
// SendMessage is the single entry point and branches internally into
// capability-specific request builders, keeping the dispatcher
// backend-agnostic.
type Provider interface {
	// Descriptor returns the static description of this provider. The
	// returned value is immutable.
	Descriptor() Descriptor

	// SupportsCapability reports whether the provider implements cap.
	// Pure query against static configuration.
	SupportsCapability(cap Capability) bool

	// DefaultModel returns the default model for cap, if one is configured.
	DefaultModel(cap Capability) (string, bool)

	// FetchModels refreshes the model list from the remote API. On failure
	// it returns a nil slice and the error; callers fall back to the
	// statically configured list rather than failing the request.
	FetchModels(ctx context.Context) ([]string, error)

	// CompareModels is the provider-specific total order used to rank
	// models by recency and capability tier. It returns a negative value
	// when a ranks above b, positive when below, zero when equal. The
	// ordering is business logic, not alphabetic.
	CompareModels(a, b string) int

	// ProcessHistory extracts the conversation turns from the envelope
	// exactly once and returns a copy guaranteed not to contain them,
	// preventing double-serialization into the provider's wire format.
	ProcessHistory(envelope Envelope) ([]Turn, Envelope)

	// SendMessage sends one request and returns the normalized response.
	// A provider that does not implement the requested capability returns
	// a Response carrying a descriptive Error string rather than a Go
	// error; only conditions that must abort dispatch (invalid model,
	// transient backend failure, unsupported input shape) are returned as
	// errors from the taxonomy in this package.
	SendMessage(ctx context.Context, request Request) (*Response, error)

	// Voice introspection. Providers without audio support return empty
	// and neutral defaults rather than erroring (see VoiceCatalog).
	AvailableVoices() []Voice
	IsValidVoice(name string) bool
	VoiceGender(name string) Gender

	// WithAPIKey returns a provider authenticating with apiKey. The
	// receiver is never mutated: implementations return a derived copy,
	// so a shared instance stays safe for concurrent use while the
	// dispatcher rotates through a credential pool.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHTTPClient sets the HTTP client used for outbound requests.
	WithHTTPClient(httpClient *http.Client) Provider
}
