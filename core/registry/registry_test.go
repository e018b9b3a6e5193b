package registry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/leofalp/aibridge/providers/ai"
)

// stubProvider is the minimal ai.Provider used to exercise the registry.
type stubProvider struct {
	ai.VoiceCatalog
	id  string
	cfg Config
}

func (p *stubProvider) Descriptor() ai.Descriptor                 { return ai.Descriptor{ID: p.id} }
func (p *stubProvider) SupportsCapability(ai.Capability) bool     { return true }
func (p *stubProvider) DefaultModel(ai.Capability) (string, bool) { return "", false }
func (p *stubProvider) FetchModels(context.Context) ([]string, error) {
	return nil, errors.New("not implemented")
}
func (p *stubProvider) CompareModels(a, b string) int { return 0 }
func (p *stubProvider) ProcessHistory(e ai.Envelope) ([]ai.Turn, ai.Envelope) {
	return e.ExtractHistory()
}
func (p *stubProvider) SendMessage(context.Context, ai.Request) (*ai.Response, error) {
	return &ai.Response{}, nil
}
func (p *stubProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *stubProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *stubProvider) WithHTTPClient(*http.Client) ai.Provider { return p }

func stubConstructor(id string) Constructor {
	return func(cfg Config) ai.Provider {
		return &stubProvider{id: id, cfg: cfg}
	}
}

// TestBuild_UnknownProvider verifies that building an unregistered id fails
// with the sentinel error.
func TestBuild_UnknownProvider(t *testing.T) {
	r := New()

	_, err := r.Build("nope", Config{})
	if !errors.Is(err, ai.ErrUnknownProvider) {
		t.Fatalf("Build() error = %v, want ErrUnknownProvider", err)
	}
}

// TestBuild_PassesConfig verifies the constructor receives the supplied
// configuration.
func TestBuild_PassesConfig(t *testing.T) {
	r := New()
	r.Register("alpha", stubConstructor("alpha"))

	p, err := r.Build("alpha", Config{APIKey: "k1", BaseURL: "http://example.test"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	stub := p.(*stubProvider)
	if stub.cfg.APIKey != "k1" || stub.cfg.BaseURL != "http://example.test" {
		t.Errorf("constructor config = %+v, want supplied values", stub.cfg)
	}
}

// TestRegister_IdempotentReplace verifies that re-registering an id replaces
// the constructor without disturbing the iteration order.
func TestRegister_IdempotentReplace(t *testing.T) {
	r := New()
	r.Register("alpha", stubConstructor("alpha-v1"))
	r.Register("beta", stubConstructor("beta"))
	r.Register("alpha", stubConstructor("alpha-v2"))

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Fatalf("IDs() = %v, want [alpha beta]", ids)
	}

	p, err := r.Build("alpha", Config{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := p.(*stubProvider).id; got != "alpha-v2" {
		t.Errorf("Build() used constructor %q, want the replacement", got)
	}
}

// TestResolveOwner covers prefix resolution, including the no-claim case and
// the registration-order tie break.
func TestResolveOwner(t *testing.T) {
	r := New()
	r.Register("gemini", stubConstructor("gemini"), "gemini-")
	r.Register("openai", stubConstructor("openai"), "gpt-", "o4-")
	r.Register("greedy", stubConstructor("greedy"), "g") // claims everything starting with g

	tests := []struct {
		model   string
		wantID  string
		claimed bool
	}{
		{"gemini-2.5-flash", "gemini", true},
		{"gpt-4o", "openai", true},
		{"o4-mini", "openai", true},
		{"grok-3", "greedy", true},
		{"claude-sonnet", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			id, ok := r.ResolveOwner(tt.model)
			if ok != tt.claimed || id != tt.wantID {
				t.Errorf("ResolveOwner(%q) = (%q, %v), want (%q, %v)", tt.model, id, ok, tt.wantID, tt.claimed)
			}
		})
	}
}

// TestResolveOwner_Deterministic verifies resolution is a pure function of
// the static table: repeated calls always agree.
func TestResolveOwner_Deterministic(t *testing.T) {
	r := New()
	r.Register("a", stubConstructor("a"), "model-")
	r.Register("b", stubConstructor("b"), "model-x")

	first, _ := r.ResolveOwner("model-x-large")
	for i := 0; i < 100; i++ {
		got, _ := r.ResolveOwner("model-x-large")
		if got != first {
			t.Fatalf("ResolveOwner() varied between calls: %q vs %q", got, first)
		}
	}
	if first != "a" {
		t.Errorf("ResolveOwner() = %q, want first registered claimant %q", first, "a")
	}
}
