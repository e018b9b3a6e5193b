package observability

// Semantic conventions for observability attributes and events. These
// constants define standard names so the dispatcher, cache, and provider
// implementations all emit consistent telemetry.

// --- Provider / dispatch attributes ---

const (
	// AttrProvider is the provider id serving the call (e.g. "gemini").
	AttrProvider = "ai.provider"

	// AttrCapability is the capability being invoked.
	AttrCapability = "ai.capability"

	// AttrModel is the model identifier serving the call.
	AttrModel = "ai.model"

	// AttrEndpoint is the API endpoint URL.
	AttrEndpoint = "ai.endpoint"

	// AttrRequestID is the dispatcher-assigned request id.
	AttrRequestID = "ai.request.id"

	// AttrAttempt is the 1-based credential attempt number.
	AttrAttempt = "ai.attempt"

	// AttrVoice is the requested voice name for audio generation.
	AttrVoice = "ai.voice"
)

// --- Cache attributes ---

const (
	// AttrCacheKey is the content-addressable cache key (hash).
	AttrCacheKey = "cache.key"

	// AttrCacheTier is the tier that answered: "memory" or "disk".
	AttrCacheTier = "cache.tier"

	// AttrCachePath is the on-disk artifact path.
	AttrCachePath = "cache.path"
)

// --- HTTP attributes ---

const (
	// AttrHTTPMethod is the HTTP request method.
	AttrHTTPMethod = "http.method"

	// AttrHTTPURL is the full request URL.
	AttrHTTPURL = "http.url"

	// AttrHTTPStatusCode is the HTTP response status code.
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRequestBodySize is the request body size in bytes.
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes.
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Events ---

const (
	// EventRequestStart marks the start of a capability request.
	EventRequestStart = "ai.request.start"

	// EventRequestEnd marks the end of a capability request.
	EventRequestEnd = "ai.request.end"

	// EventCacheHit is emitted when a lookup is answered from a cache tier.
	EventCacheHit = "cache.hit"

	// EventCacheMiss is emitted when both cache tiers miss.
	EventCacheMiss = "cache.miss"

	// EventCacheWrite is emitted after a network result is persisted.
	EventCacheWrite = "cache.write"

	// EventCredentialRotated is emitted when the dispatcher moves to the
	// next credential after a transient failure.
	EventCredentialRotated = "dispatch.credential.rotated"

	// EventProviderFallback is emitted when the dispatcher moves to the
	// next capability-supporting provider.
	EventProviderFallback = "dispatch.provider.fallback"
)
