package openai

import (
	"strings"

	"github.com/leofalp/aibridge/providers/ai"
)

// Known OpenAI models.
const (
	ModelGPT41      = "gpt-4.1"
	ModelGPT41Mini  = "gpt-4.1-mini"
	ModelGPT4o      = "gpt-4o"
	ModelGPT4oMini  = "gpt-4o-mini"
	ModelImage      = "gpt-image-1"
	ModelTTS        = "gpt-4o-mini-tts"
	ModelTTSLegacy  = "tts-1"
	ModelTranscribe = "gpt-4o-transcribe"
	ModelWhisper    = "whisper-1"
)

var descriptor = ai.Descriptor{
	ID: providerID,
	Capabilities: []ai.Capability{
		ai.CapabilityTextGeneration,
		ai.CapabilityImageGeneration,
		ai.CapabilityImageAnalysis,
		ai.CapabilityAudioGeneration,
		ai.CapabilityAudioTranscription,
	},
	DefaultModels: map[ai.Capability]string{
		ai.CapabilityTextGeneration:     ModelGPT41Mini,
		ai.CapabilityImageGeneration:    ModelGPT41Mini, // responses model; the image tool does the rendering
		ai.CapabilityImageAnalysis:      ModelGPT4o,
		ai.CapabilityAudioGeneration:    ModelTTS,
		ai.CapabilityAudioTranscription: ModelTranscribe,
	},
	Models: map[ai.Capability][]string{
		ai.CapabilityTextGeneration:     {ModelGPT41, ModelGPT41Mini, ModelGPT4o, ModelGPT4oMini},
		ai.CapabilityImageGeneration:    {ModelGPT41Mini, ModelImage},
		ai.CapabilityImageAnalysis:      {ModelGPT41, ModelGPT4o},
		ai.CapabilityAudioGeneration:    {ModelTTS, ModelTTSLegacy},
		ai.CapabilityAudioTranscription: {ModelTranscribe, ModelWhisper},
	},
	ModelPrefixes: []string{"gpt-", "o1-", "o3-", "whisper-", "tts-"},
	RateLimits: map[ai.Capability]ai.RateLimit{
		ai.CapabilityTextGeneration:     {RequestsPerMinute: 60, Burst: 10},
		ai.CapabilityImageGeneration:    {RequestsPerMinute: 5, Burst: 1},
		ai.CapabilityImageAnalysis:      {RequestsPerMinute: 60, Burst: 10},
		ai.CapabilityAudioGeneration:    {RequestsPerMinute: 30, Burst: 5},
		ai.CapabilityAudioTranscription: {RequestsPerMinute: 30, Burst: 5},
	},
	CredentialKeys: []string{"OPENAI_API_KEY"},
	AuthHeader:     "Authorization",
	AuthPrefix:     "Bearer ",
}

// builtinVoices are the synthesis voices the audio/speech endpoint accepts.
var builtinVoices = []ai.Voice{
	{Name: "alloy", Gender: ai.GenderNeutral},
	{Name: "ash", Gender: ai.GenderMale},
	{Name: "echo", Gender: ai.GenderMale},
	{Name: "onyx", Gender: ai.GenderMale},
	{Name: "coral", Gender: ai.GenderFemale},
	{Name: "nova", Gender: ai.GenderFemale},
	{Name: "sage", Gender: ai.GenderFemale},
	{Name: "shimmer", Gender: ai.GenderFemale},
}

// CompareModels ranks OpenAI models by family recency, then prefers the full
// variant over mini. Ties break alphabetically.
func (p *Provider) CompareModels(a, b string) int {
	sa, sb := modelScore(a), modelScore(b)
	if sa != sb {
		return sb - sa
	}
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

func modelScore(model string) int {
	score := 0
	switch {
	case strings.HasPrefix(model, "gpt-4.1"):
		score += 300
	case strings.HasPrefix(model, "gpt-4o"):
		score += 200
	case strings.HasPrefix(model, "gpt-4"):
		score += 100
	case strings.HasPrefix(model, "gpt-3.5"):
		score += 50
	}
	if strings.Contains(model, "mini") || strings.Contains(model, "nano") {
		score -= 10
	}
	if strings.Contains(model, "preview") {
		score -= 5
	}
	return score
}
