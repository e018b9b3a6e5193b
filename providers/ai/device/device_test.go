package device

import (
	"context"
	"errors"
	"testing"

	"github.com/leofalp/aibridge/providers/ai"
)

// stubEngine is a deterministic in-memory engine.
type stubEngine struct {
	voices          []ai.Voice
	transcript      string
	reply           string
	transcribeCalls int
}

func (e *stubEngine) Synthesize(_ context.Context, text string, params ai.AudioParams) ([]byte, error) {
	return append([]byte(params.Format+":"), []byte(text)...), nil
}

func (e *stubEngine) Transcribe(_ context.Context, _ string) (string, error) {
	e.transcribeCalls++
	return e.transcript, nil
}

func (e *stubEngine) Converse(_ context.Context, history []ai.Turn, prompt string) (string, error) {
	if len(history) > 0 && prompt == "" {
		return "", errors.New("history without a live prompt")
	}
	return e.reply, nil
}

func (e *stubEngine) Voices() []ai.Voice { return e.voices }

func newStub() *stubEngine {
	return &stubEngine{
		voices: []ai.Voice{
			{Name: "Samantha", Gender: ai.GenderFemale},
			{Name: "Daniel", Gender: ai.GenderMale},
		},
		transcript: "turn off the lights",
		reply:      "done",
	}
}

func TestSendMessage_RealtimeConversation(t *testing.T) {
	provider := New(newStub())

	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityRealtimeConversation,
		Envelope:   ai.Envelope{Context: "turn off the lights"},
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if result.Text != "done" {
		t.Errorf("result.Text = %q, want the engine reply", result.Text)
	}
	if result.Model != ModelOnDevice {
		t.Errorf("result.Model = %q, want %q", result.Model, ModelOnDevice)
	}
}

func TestSendMessage_SynthesizeUsesEngine(t *testing.T) {
	provider := New(newStub())

	audio, err := ai.NewAudioParams("Samantha", "en-US", ai.AudioFormatWAV)
	if err != nil {
		t.Fatalf("NewAudioParams() error: %v", err)
	}
	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityAudioGeneration,
		Envelope:   ai.Envelope{Context: "hello"},
		Audio:      &audio,
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if string(result.AudioData) != "wav:hello" {
		t.Errorf("result.AudioData = %q, want the engine rendering", result.AudioData)
	}
	if result.Format != ai.AudioFormatWAV {
		t.Errorf("result.Format = %q, want wav", result.Format)
	}
}

func TestSendMessage_UninstalledVoiceRejected(t *testing.T) {
	provider := New(newStub())

	audio := ai.AudioParams{Voice: "Ghost", Format: ai.AudioFormatWAV}
	_, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityAudioGeneration,
		Envelope:   ai.Envelope{Context: "hello"},
		Audio:      &audio,
	})

	var unsupported *ai.UnsupportedInputShapeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("SendMessage() error = %v, want UnsupportedInputShapeError", err)
	}
}

func TestSendMessage_LiveTranscription(t *testing.T) {
	engine := newStub()
	provider := New(engine)

	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityAudioTranscription,
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if result.Text != "turn off the lights" {
		t.Errorf("result.Text = %q, want the transcript", result.Text)
	}
	if engine.transcribeCalls != 1 {
		t.Errorf("engine.transcribeCalls = %d, want 1", engine.transcribeCalls)
	}
}

func TestSendMessage_FileTranscriptionRejected(t *testing.T) {
	engine := newStub()
	provider := New(engine)

	_, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityAudioTranscription,
		Attachment: &ai.Attachment{Data: "Zm9v", MimeType: "audio/mpeg", FileName: "clip.mp3"},
	})

	var unsupported *ai.UnsupportedInputShapeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("SendMessage() error = %v, want UnsupportedInputShapeError", err)
	}
	if engine.transcribeCalls != 0 {
		t.Errorf("engine must not be consulted for file input, got %d calls", engine.transcribeCalls)
	}
}

func TestVoiceIntrospection(t *testing.T) {
	provider := New(newStub())

	if !provider.IsValidVoice("Daniel") {
		t.Error("Daniel must be a valid installed voice")
	}
	if provider.IsValidVoice("Ghost") {
		t.Error("Ghost must not be valid")
	}
	if got := provider.VoiceGender("Samantha"); got != ai.GenderFemale {
		t.Errorf("VoiceGender(Samantha) = %q, want female", got)
	}

	unconfigured := New(nil)
	if len(unconfigured.AvailableVoices()) != 0 {
		t.Error("a provider without an engine must report no voices")
	}
}
