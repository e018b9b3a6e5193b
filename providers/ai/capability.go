package ai

// Capability identifies one category of AI operation. The set is closed:
// providers declare which members they support, and the dispatcher routes a
// request to a provider based on this value.
type Capability string

const (
	CapabilityTextGeneration       Capability = "text_generation"
	CapabilityImageGeneration      Capability = "image_generation"
	CapabilityImageAnalysis        Capability = "image_analysis"
	CapabilityAudioGeneration      Capability = "audio_generation"
	CapabilityAudioTranscription   Capability = "audio_transcription"
	CapabilityRealtimeConversation Capability = "realtime_conversation"
)

// AllCapabilities returns every member of the capability set in a fixed,
// documented order. Callers must not mutate the returned slice.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityTextGeneration,
		CapabilityImageGeneration,
		CapabilityImageAnalysis,
		CapabilityAudioGeneration,
		CapabilityAudioTranscription,
		CapabilityRealtimeConversation,
	}
}

// Valid reports whether c is a member of the closed capability set.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityTextGeneration, CapabilityImageGeneration, CapabilityImageAnalysis,
		CapabilityAudioGeneration, CapabilityAudioTranscription, CapabilityRealtimeConversation:
		return true
	}
	return false
}

// Cacheable reports whether results for this capability may be stored in the
// content cache. Analysis and realtime capabilities depend on transient input
// (an uploaded image, a live microphone) and are never cached.
func (c Capability) Cacheable() bool {
	switch c {
	case CapabilityTextGeneration, CapabilityImageGeneration, CapabilityAudioGeneration:
		return true
	}
	return false
}

// String returns the wire name of the capability.
func (c Capability) String() string {
	return string(c)
}
