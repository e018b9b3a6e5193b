package ai

/*
	##### PROVIDER INPUT #####
*/

// Request is the canonicalized input to a single provider call. The
// dispatcher fills Provider and Model during selection; callers usually only
// set Capability, Envelope, and the capability-specific parameter struct.
type Request struct {
	Capability Capability   `json:"capability"`
	Envelope   Envelope     `json:"envelope"`
	Provider   string       `json:"provider,omitempty"` // Explicit provider id; empty lets the dispatcher choose
	Model      string       `json:"model,omitempty"`    // Explicit model; empty selects the provider default
	Attachment *Attachment  `json:"attachment,omitempty"`
	Audio      *AudioParams `json:"audio,omitempty"`
	Image      *ImageParams `json:"image,omitempty"`

	// RequireStructured demands an embedded structured payload in the
	// reply. When set, a response the normalizer cannot parse fails with
	// *MalformedResponseError instead of being returned raw.
	RequireStructured bool `json:"require_structured,omitempty"`
}

// Voice returns the requested voice name, or empty when no audio parameters
// were supplied.
func (r Request) Voice() string {
	if r.Audio == nil {
		return ""
	}
	return r.Audio.Voice
}

/*
	##### PROVIDER OUTPUT #####
*/

// Response is the canonical output of one backend call, normalized from the
// provider-specific wire reply.
type Response struct {
	// Text is the narrative text content, when the capability produces any.
	Text string `json:"text,omitempty"`

	// ImageData holds generated image bytes (decoded from base64).
	ImageData []byte `json:"image_data,omitempty"`

	// AudioData holds generated audio bytes.
	AudioData []byte `json:"audio_data,omitempty"`

	// Format is the output format of the binary payload, e.g. "png", "mp3".
	Format string `json:"format,omitempty"`

	// Description is the structured description/revised prompt extracted
	// from mixed narrative-plus-JSON output, when present.
	Description string `json:"description,omitempty"`

	// Structured reports whether Description (and Text, for structured
	// requests) came from successfully parsed embedded JSON. When false the
	// payload is raw, best-effort content.
	Structured bool `json:"structured,omitempty"`

	// Seed is a provider-assigned generation seed or id, for diagnostics.
	Seed string `json:"seed,omitempty"`

	// Model is the model that actually served the call.
	Model string `json:"model,omitempty"`

	// Error carries a descriptive message when the provider declined the
	// request for a reason that should not abort dispatch (e.g. a
	// capability it does not implement). Empty on success.
	Error string `json:"error,omitempty"`
}

// HasArtifact reports whether the response carries a binary payload worth
// persisting to the content cache.
func (r *Response) HasArtifact() bool {
	return len(r.ImageData) > 0 || len(r.AudioData) > 0
}

// Artifact returns the binary payload, preferring audio over image when both
// are present (no current backend produces both).
func (r *Response) Artifact() []byte {
	if len(r.AudioData) > 0 {
		return r.AudioData
	}
	return r.ImageData
}
