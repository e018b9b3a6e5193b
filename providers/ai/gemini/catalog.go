package gemini

import (
	"strings"

	"github.com/leofalp/aibridge/providers/ai"
)

// Known Gemini models.
const (
	ModelPro       = "gemini-2.5-pro"
	ModelFlash     = "gemini-2.5-flash"
	ModelFlashLite = "gemini-2.5-flash-lite"
	ModelFlashOld  = "gemini-2.0-flash"
	ModelImage     = "gemini-2.5-flash-image"
	ModelTTS       = "gemini-2.5-flash-preview-tts"
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
		ai.CapabilityTextGeneration:     ModelFlash,
		ai.CapabilityImageGeneration:    ModelImage,
		ai.CapabilityImageAnalysis:      ModelFlash,
		ai.CapabilityAudioGeneration:    ModelTTS,
		ai.CapabilityAudioTranscription: ModelFlash,
	},
	Models: map[ai.Capability][]string{
		ai.CapabilityTextGeneration:     {ModelPro, ModelFlash, ModelFlashLite, ModelFlashOld},
		ai.CapabilityImageGeneration:    {ModelImage},
		ai.CapabilityImageAnalysis:      {ModelPro, ModelFlash, ModelFlashOld},
		ai.CapabilityAudioGeneration:    {ModelTTS},
		ai.CapabilityAudioTranscription: {ModelPro, ModelFlash},
	},
	ModelPrefixes: []string{"gemini-", "imagen-"},
	RateLimits: map[ai.Capability]ai.RateLimit{
		ai.CapabilityTextGeneration:     {RequestsPerMinute: 60, Burst: 10},
		ai.CapabilityImageGeneration:    {RequestsPerMinute: 10, Burst: 2},
		ai.CapabilityImageAnalysis:      {RequestsPerMinute: 60, Burst: 10},
		ai.CapabilityAudioGeneration:    {RequestsPerMinute: 10, Burst: 2},
		ai.CapabilityAudioTranscription: {RequestsPerMinute: 30, Burst: 5},
	},
	CredentialKeys: []string{"GEMINI_API_KEY"},
	AuthHeader:     "x-goog-api-key",
}

// prebuiltVoices are the synthesis voices Gemini exposes for TTS.
var prebuiltVoices = []ai.Voice{
	{Name: "Kore", Gender: ai.GenderFemale},
	{Name: "Aoede", Gender: ai.GenderFemale},
	{Name: "Leda", Gender: ai.GenderFemale},
	{Name: "Zephyr", Gender: ai.GenderFemale},
	{Name: "Puck", Gender: ai.GenderMale},
	{Name: "Charon", Gender: ai.GenderMale},
	{Name: "Fenrir", Gender: ai.GenderMale},
	{Name: "Orus", Gender: ai.GenderMale},
}

// CompareModels ranks Gemini models by generation and tier: newer generations
// first, flash variants ahead of pro (latency-optimized tiers are preferred
// for interactive use), lite and deprecated tiers last. Ties break
// alphabetically so the order stays total.
func (p *Provider) CompareModels(a, b string) int {
	sa, sb := modelScore(a), modelScore(b)
	if sa != sb {
		return sb - sa // higher score ranks first
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
	case strings.Contains(model, "-2.5-"):
		score += 300
	case strings.Contains(model, "-2.0-"):
		score += 200
	case strings.Contains(model, "-1.5-"):
		score += 100
	}
	switch {
	case strings.Contains(model, "flash-lite"):
		score += 10
	case strings.Contains(model, "flash"):
		score += 30
	case strings.Contains(model, "pro"):
		score += 20
	}
	if strings.Contains(model, "exp") || strings.Contains(model, "preview") {
		score += 5
	}
	if strings.Contains(model, "deprecated") {
		score -= 500
	}
	return score
}
