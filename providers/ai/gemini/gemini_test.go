package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/leofalp/aibridge/providers/ai"
)

func TestNew(t *testing.T) {
	provider := New()
	if provider == nil {
		t.Fatal("New() returned nil")
	}
	if provider.baseURL != defaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", defaultBaseURL, provider.baseURL)
	}
}

func TestWithAPIKey(t *testing.T) {
	provider := New().WithAPIKey("test-key").(*Provider)
	if provider.apiKey != "test-key" {
		t.Errorf("expected apiKey %q, got %q", "test-key", provider.apiKey)
	}
}

func TestWithBaseURL(t *testing.T) {
	provider := New().WithBaseURL("https://custom.api.com").(*Provider)
	if provider.baseURL != "https://custom.api.com" {
		t.Errorf("expected baseURL %q, got %q", "https://custom.api.com", provider.baseURL)
	}
}

func TestSendMessage_TextGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing or incorrect x-goog-api-key header: %s", r.Header.Get("x-goog-api-key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) == 0 {
			t.Error("expected instructions to map to systemInstruction")
		}
		// history (2 turns) + live user message
		if len(req.Contents) != 3 {
			t.Errorf("expected 3 content blocks, got %d", len(req.Contents))
		}
		if req.Contents[1].Role != "model" {
			t.Errorf("assistant turn must map to role %q, got %q", "model", req.Contents[1].Role)
		}

		resp := generateContentResponse{
			Candidates: []candidate{{
				Content:      &content{Role: "model", Parts: []part{{Text: "Bonjour!"}}},
				FinishReason: "STOP",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityTextGeneration,
		Envelope: ai.Envelope{
			Context:      "Say hello in French",
			Instructions: []ai.Instruction{{Key: "tone", Value: "casual"}},
			History: []ai.Turn{
				{Role: ai.RoleUser, Content: "Hi"},
				{Role: ai.RoleAssistant, Content: "Hello!"},
			},
		},
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if result.Text != "Bonjour!" {
		t.Errorf("result.Text = %q, want %q", result.Text, "Bonjour!")
	}
}

func TestSendMessage_ImageGeneration(t *testing.T) {
	imageBytes := []byte{0x89, 'P', 'N', 'G'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.GenerationConfig == nil || len(req.GenerationConfig.ResponseModalities) != 2 {
			t.Error("image generation must request TEXT and IMAGE modalities")
		}

		resp := generateContentResponse{
			Candidates: []candidate{{
				Content: &content{Role: "model", Parts: []part{
					{Text: "A calm mountain lake at dawn"},
					{InlineData: &inlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(imageBytes)}},
				}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityImageGeneration,
		Envelope:   ai.Envelope{Context: "a mountain lake"},
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if string(result.ImageData) != string(imageBytes) {
		t.Errorf("result.ImageData = %v, want decoded payload", result.ImageData)
	}
	if result.Format != "png" {
		t.Errorf("result.Format = %q, want %q", result.Format, "png")
	}
	if result.Text == "" {
		t.Error("narrative text alongside the image must be preserved")
	}
}

func TestSendMessage_SpeechUsesVoiceConfig(t *testing.T) {
	audioBytes := []byte("pcm-data")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		cfg := req.GenerationConfig
		if cfg == nil || len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
			t.Error("speech synthesis must request the AUDIO modality")
		}
		if cfg == nil || cfg.SpeechConfig == nil || cfg.SpeechConfig.VoiceConfig == nil ||
			cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Kore" {
			t.Error("expected prebuilt voice Kore in speechConfig")
		}

		resp := generateContentResponse{
			Candidates: []candidate{{
				Content: &content{Role: "model", Parts: []part{
					{InlineData: &inlineData{MimeType: "audio/L16;rate=24000", Data: base64.StdEncoding.EncodeToString(audioBytes)}},
				}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	audio, err := ai.NewAudioParams("Kore", "en-US", ai.AudioFormatWAV)
	if err != nil {
		t.Fatalf("NewAudioParams() error: %v", err)
	}
	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityAudioGeneration,
		Envelope:   ai.Envelope{Context: "Welcome aboard"},
		Audio:      &audio,
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if string(result.AudioData) != string(audioBytes) {
		t.Errorf("result.AudioData = %q, want decoded payload", result.AudioData)
	}
	if result.Format != ai.AudioFormatWAV {
		t.Errorf("result.Format = %q, want %q", result.Format, ai.AudioFormatWAV)
	}
}

func TestSendMessage_UnknownVoice(t *testing.T) {
	provider := New().WithAPIKey("test-key")

	audio := ai.AudioParams{Voice: "Nobody", Format: ai.AudioFormatMP3}
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

func TestSendMessage_TransientStatusClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Resource has been exhausted"}}`))
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	_, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityTextGeneration,
		Envelope:   ai.Envelope{Context: "hello"},
	})

	var transient *ai.TransientBackendError
	if !errors.As(err, &transient) {
		t.Fatalf("SendMessage() error = %v, want TransientBackendError", err)
	}
	if transient.StatusCode != http.StatusTooManyRequests {
		t.Errorf("transient.StatusCode = %d, want 429", transient.StatusCode)
	}
	if transient.Message != "Resource has been exhausted" {
		t.Errorf("transient.Message = %q, want the vendor detail", transient.Message)
	}
}

func TestSendMessage_AnalysisRequiresAttachment(t *testing.T) {
	provider := New().WithAPIKey("test-key")

	_, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityImageAnalysis,
		Envelope:   ai.Envelope{Context: "what is in this picture?"},
	})

	var unsupported *ai.UnsupportedInputShapeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("SendMessage() error = %v, want UnsupportedInputShapeError", err)
	}
}

func TestFetchModels_FiltersGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		resp := listModelsResponse{Models: []modelInfo{
			{Name: "models/gemini-2.5-flash", SupportedGenerationMethods: []string{"generateContent"}},
			{Name: "models/embedding-001", SupportedGenerationMethods: []string{"embedContent"}},
			{Name: "models/gemini-2.5-pro", SupportedGenerationMethods: []string{"generateContent", "countTokens"}},
		}}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL).(*Provider)

	models, err := provider.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels() error: %v", err)
	}
	want := []string{"gemini-2.5-flash", "gemini-2.5-pro"}
	if len(models) != len(want) {
		t.Fatalf("FetchModels() = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("FetchModels()[%d] = %q, want %q", i, models[i], want[i])
		}
	}
}

func TestCompareModels_Ranking(t *testing.T) {
	provider := New()

	models := []string{ModelFlashOld, ModelPro, ModelFlashLite, ModelFlash}
	sort.SliceStable(models, func(i, j int) bool {
		return provider.CompareModels(models[i], models[j]) < 0
	})

	want := []string{ModelFlash, ModelPro, ModelFlashLite, ModelFlashOld}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("rank %d = %q, want %q (full order %v)", i, models[i], want[i], models)
		}
	}
}

func TestVoiceIntrospection(t *testing.T) {
	provider := New()

	if len(provider.AvailableVoices()) == 0 {
		t.Fatal("expected a non-empty voice catalog")
	}
	if !provider.IsValidVoice("Puck") {
		t.Error("Puck must be a valid voice")
	}
	if provider.IsValidVoice("Nobody") {
		t.Error("unknown voice must be invalid")
	}
	if got := provider.VoiceGender("Kore"); got != ai.GenderFemale {
		t.Errorf("VoiceGender(Kore) = %q, want female", got)
	}
	if got := provider.VoiceGender("Nobody"); got != ai.GenderNeutral {
		t.Errorf("VoiceGender(Nobody) = %q, want neutral", got)
	}
}

// TestWithAPIKey_DerivesCopy verifies the builder returns a new instance and
// leaves the receiver's credential alone, so one provider value can serve
// concurrent requests under different keys.
func TestWithAPIKey_DerivesCopy(t *testing.T) {
	base := New().WithAPIKey("first").(*Provider)
	derived := base.WithAPIKey("second").(*Provider)

	if base.apiKey != "first" {
		t.Errorf("base.apiKey = %q, want %q", base.apiKey, "first")
	}
	if derived.apiKey != "second" {
		t.Errorf("derived.apiKey = %q, want %q", derived.apiKey, "second")
	}
	if base == derived {
		t.Errorf("WithAPIKey must not return the receiver")
	}
}
