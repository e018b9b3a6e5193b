package anthropic

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

func TestSendMessage_TextGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("missing anthropic-version header, got %q", r.Header.Get("anthropic-version"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.MaxTokens == 0 {
			t.Error("max_tokens must always be set")
		}
		if req.System == "" {
			t.Error("expected instructions in the system field")
		}
		if len(req.Messages) != 3 {
			t.Errorf("expected 3 messages (2 history + live), got %d", len(req.Messages))
		}

		resp := messagesResponse{
			ID:         "msg_01",
			Content:    []contentBlock{{Type: "text", Text: "The capital is Paris."}},
			StopReason: "end_turn",
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
			Context:      "What is the capital of France?",
			Instructions: []ai.Instruction{{Key: "style", Value: "concise"}},
			History: []ai.Turn{
				{Role: ai.RoleUser, Content: "Hi"},
				{Role: ai.RoleAssistant, Content: "Hello!"},
			},
		},
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if result.Text != "The capital is Paris." {
		t.Errorf("result.Text = %q, want the answer", result.Text)
	}
	if result.Seed != "msg_01" {
		t.Errorf("result.Seed = %q, want the message id", result.Seed)
	}
}

func TestSendMessage_ImageAnalysis(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("img"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		last := req.Messages[len(req.Messages)-1]
		var sawImage bool
		for _, block := range last.Content {
			if block.Type == "image" && block.Source != nil &&
				block.Source.Type == "base64" && block.Source.Data == imageB64 {
				sawImage = true
			}
		}
		if !sawImage {
			t.Error("expected an inline base64 image block")
		}

		resp := messagesResponse{Content: []contentBlock{{Type: "text", Text: "a wooden chair"}}}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityImageAnalysis,
		Attachment: &ai.Attachment{Data: imageB64, MimeType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if result.Text != "a wooden chair" {
		t.Errorf("result.Text = %q, want the description", result.Text)
	}
}

func TestSendMessage_UnsupportedCapability(t *testing.T) {
	provider := New().WithAPIKey("test-key")

	result, err := provider.SendMessage(context.Background(), ai.Request{
		Capability: ai.CapabilityAudioGeneration,
		Envelope:   ai.Envelope{Context: "say this"},
	})
	if err != nil {
		t.Fatalf("unsupported capability must not return a Go error, got %v", err)
	}
	if result.Error == "" {
		t.Error("expected a descriptive Error string on the response")
	}
}

func TestSendMessage_OverloadedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`))
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
	if transient.StatusCode != 529 {
		t.Errorf("transient.StatusCode = %d, want 529", transient.StatusCode)
	}
	if transient.Message != "Overloaded" {
		t.Errorf("transient.Message = %q, want the vendor detail", transient.Message)
	}
}

func TestVoiceIntrospection_NeutralDefaults(t *testing.T) {
	provider := New()

	if len(provider.AvailableVoices()) != 0 {
		t.Error("a provider without audio must report no voices")
	}
	if provider.IsValidVoice("alloy") {
		t.Error("no voice can be valid without audio support")
	}
	if got := provider.VoiceGender("anything"); got != ai.GenderNeutral {
		t.Errorf("VoiceGender = %q, want neutral", got)
	}
}

func TestCompareModels_Ranking(t *testing.T) {
	provider := New()

	models := []string{ModelHaiku, ModelOpus, ModelSonnet, "claude-3-5-sonnet"}
	sort.SliceStable(models, func(i, j int) bool {
		return provider.CompareModels(models[i], models[j]) < 0
	})

	want := []string{ModelSonnet, ModelHaiku, ModelOpus, "claude-3-5-sonnet"}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("rank %d = %q, want %q (full order %v)", i, models[i], want[i], models)
		}
	}
}

// TestWithAPIKey_DerivesCopy verifies the builder returns a new instance and
// leaves the receiver's credential alone.
func TestWithAPIKey_DerivesCopy(t *testing.T) {
	base := New().WithAPIKey("first").(*Provider)
	derived := base.WithAPIKey("second").(*Provider)

	if base.apiKey != "first" {
		t.Errorf("base.apiKey = %q, want %q", base.apiKey, "first")
	}
	if derived.apiKey != "second" {
		t.Errorf("derived.apiKey = %q, want %q", derived.apiKey, "second")
	}
}
