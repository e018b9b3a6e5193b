package ai

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider is returned by the registry when no constructor is
// registered under the requested provider id.
var ErrUnknownProvider = errors.New("aibridge: unknown provider")

// InvalidModelError reports that the requested (or resolved default) model is
// not recognized by the resolved provider. It is never retried.
type InvalidModelError struct {
	Provider string
	Model    string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("aibridge: model %q is not recognized by provider %q", e.Model, e.Provider)
}

// TransientBackendError reports a failure that is expected to clear on
// retry: rate limiting or a server-side 5xx. The dispatcher responds by
// rotating to the next credential for the same provider.
type TransientBackendError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *TransientBackendError) Error() string {
	return fmt.Sprintf("aibridge: transient failure from provider %q (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsTransientStatus reports whether an HTTP status code should be classified
// as transient: rate limiting (429) and server-side failures (5xx, plus 529
// used by some vendors for overload).
func IsTransientStatus(status int) bool {
	return status == 429 || status == 529 || (status >= 500 && status < 600)
}

// CredentialsExhaustedError reports that every configured credential for a
// provider was tried and failed. It is terminal for that provider: the
// dispatcher may fall over to another provider but never retries this one.
type CredentialsExhaustedError struct {
	Provider string
	Attempts int
	Last     error
}

func (e *CredentialsExhaustedError) Error() string {
	return fmt.Sprintf("aibridge: all %d credentials for provider %q exhausted: %v", e.Attempts, e.Provider, e.Last)
}

func (e *CredentialsExhaustedError) Unwrap() error { return e.Last }

// UnsupportedInputShapeError reports that the provider supports the
// capability in general but not for this specific input shape (e.g. a
// pre-recorded file handed to a microphone-only transcription backend). The
// dispatcher treats it as "try the next provider", not as a hard failure.
type UnsupportedInputShapeError struct {
	Provider   string
	Capability Capability
	Reason     string
}

func (e *UnsupportedInputShapeError) Error() string {
	return fmt.Sprintf("aibridge: provider %q does not support this input shape for %s: %s", e.Provider, e.Capability, e.Reason)
}

// MalformedResponseError reports that a backend returned content the
// normalizer could not parse into the expected shape. The raw text is still
// handed to the caller, flagged unstructured; this error only surfaces when
// a caller explicitly requires structured output.
type MalformedResponseError struct {
	Provider string
	Raw      string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("aibridge: provider %q returned content that could not be parsed into the expected shape", e.Provider)
}

// CacheIOError reports a persistence failure on cache read or write. The
// cache is off the critical path: a request must still complete via the
// network when one of these occurs.
type CacheIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("aibridge: cache %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheIOError) Unwrap() error { return e.Err }
