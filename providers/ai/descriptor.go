package ai

// RateLimit declares a provider's request budget for one capability.
// Zero values mean unlimited.
type RateLimit struct {
	RequestsPerMinute int
	Burst             int
}

// Descriptor is the static, immutable description of one provider: identity,
// declared capability set, per-capability model lists and defaults, rate
// limits, required credential keys, and how to build its auth header.
// A Descriptor is constructed once from configuration and never mutated.
type Descriptor struct {
	// ID uniquely identifies the provider, e.g. "gemini".
	ID string

	// Capabilities is the declared capability set.
	Capabilities []Capability

	// DefaultModels maps a capability to the model used when the caller
	// does not name one.
	DefaultModels map[Capability]string

	// Models maps a capability to the statically configured model list.
	// Remote refresh via FetchModels may supersede it at runtime.
	Models map[Capability][]string

	// ModelPrefixes are the name prefixes this provider claims for
	// model-to-provider resolution, e.g. "gemini-".
	ModelPrefixes []string

	// RateLimits holds per-capability request budgets.
	RateLimits map[Capability]RateLimit

	// CredentialKeys names the environment keys that hold this provider's
	// API key pool, in rotation order.
	CredentialKeys []string

	// AuthHeader and AuthPrefix describe how a credential is sent, e.g.
	// ("Authorization", "Bearer ") or ("x-goog-api-key", "").
	AuthHeader string
	AuthPrefix string
}

// AuthHeaderValue returns the header name and formatted value carrying
// apiKey under this provider's auth scheme, e.g. ("Authorization",
// "Bearer sk-...") or ("x-goog-api-key", "AIza...").
func (d Descriptor) AuthHeaderValue(apiKey string) (name, value string) {
	return d.AuthHeader, d.AuthPrefix + apiKey
}

// Supports reports whether cap is in the declared capability set.
func (d Descriptor) Supports(cap Capability) bool {
	for _, c := range d.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// DefaultModel returns the default model for cap, if one is declared.
func (d Descriptor) DefaultModel(cap Capability) (string, bool) {
	m, ok := d.DefaultModels[cap]
	return m, ok && m != ""
}

// KnowsModel reports whether model appears in any capability's model list.
func (d Descriptor) KnowsModel(model string) bool {
	for _, models := range d.Models {
		for _, m := range models {
			if m == model {
				return true
			}
		}
	}
	return false
}
