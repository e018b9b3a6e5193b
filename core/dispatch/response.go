package dispatch

import "github.com/leofalp/aibridge/providers/ai"

// AIResponse is the dispatcher's normalized return value: the canonical
// provider response plus cache provenance and, for binary artifacts, the
// persisted file reference alongside the raw payload.
type AIResponse struct {
	ai.Response

	// RequestID is the dispatcher-assigned id for this request.
	RequestID string `json:"request_id"`

	// Provider is the id of the provider that served the call.
	Provider string `json:"provider"`

	// FromCache reports whether the result came from the content cache
	// rather than a fresh backend call.
	FromCache bool `json:"from_cache"`

	// ArtifactPath is the persisted file reference for cacheable binary
	// payloads; empty when nothing was persisted.
	ArtifactPath string `json:"artifact_path,omitempty"`
}
