// Package dispatch implements the capability router: it selects a provider
// and model for a request, consults the content cache, invokes the provider,
// classifies failures, rotates credentials, and falls over to alternate
// providers when the selected one cannot serve the call.
//
// Per request the router moves through selecting → invoking → (success |
// retrying | failing over | exhausted). Selection is deterministic given
// identical configuration: explicit ids win, then model-prefix ownership,
// then registration order. There is no randomized choice, so caching and
// test reproducibility hold.
package dispatch
