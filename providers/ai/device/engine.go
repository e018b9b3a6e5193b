package device

import (
	"context"

	"github.com/leofalp/aibridge/providers/ai"
)

// Engine abstracts the operating system's speech and assistant facilities.
// Implementations bind to platform APIs; tests substitute deterministic
// fakes. Every method blocks until the hardware interaction completes and
// honors context cancellation.
type Engine interface {
	// Synthesize renders text to audio with the engine's local voices and
	// returns the rendered payload in the requested format.
	Synthesize(ctx context.Context, text string, params ai.AudioParams) ([]byte, error)

	// Transcribe listens on the live microphone until the utterance ends and
	// returns the recognized text. There is no file input: the engine only
	// hears the microphone.
	Transcribe(ctx context.Context, language string) (string, error)

	// Converse runs one turn of the on-device assistant conversation and
	// returns its reply.
	Converse(ctx context.Context, history []ai.Turn, prompt string) (string, error)

	// Voices lists the locally installed synthesis voices.
	Voices() []ai.Voice
}
