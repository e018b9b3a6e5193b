// Package device implements the ai.Provider contract for an on-device
// backend: realtime conversation plus live-microphone speech synthesis and
// transcription, with no network round-trip. The OS plumbing sits behind the
// Engine interface; this provider only rejects file-based transcription (the
// engine hears the microphone, not stored clips) and adapts engine results to
// the canonical response shape.
package device
