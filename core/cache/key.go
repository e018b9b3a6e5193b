package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key is the hex-encoded content hash addressing one cached artifact.
type Key string

// KeyParams are the semantically distinguishing dimensions of a cacheable
// request. The hash covers all of them, never content alone: identical text
// with a different voice, format, language, or provider must not collide.
type KeyParams struct {
	Content  string // The text being generated/synthesized from
	Selector string // Voice name (audio) or model name (text/image)
	Language string // Language/locale tag
	Provider string // Provider id
	Format   string // Output format, e.g. "mp3", "png"
}

// ComputeKey returns the deterministic hash of params. Each field is fed to
// the hash with a length prefix so that no two distinct tuples can produce
// the same byte stream.
func ComputeKey(params KeyParams) Key {
	h := sha256.New()
	for _, field := range []string{params.Content, params.Selector, params.Language, params.Provider, params.Format} {
		fmt.Fprintf(h, "%d:", len(field))
		h.Write([]byte(field))
	}
	return Key(hex.EncodeToString(h.Sum(nil)))
}
