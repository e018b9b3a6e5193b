// Package ai defines the provider-agnostic contract shared by every backend
// implementation: the closed set of capabilities, the request envelope, the
// canonical provider response, and the error taxonomy surfaced to callers.
//
// Concrete backends live in subpackages (gemini, openai, anthropic, device)
// and are orchestrated by core/dispatch. Code outside the provider
// subpackages should only ever depend on the types in this package.
package ai
