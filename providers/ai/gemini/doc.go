// Package gemini implements the ai.Provider contract for Google's Gemini
// API. It is the broadest backend: text generation, image generation and
// analysis, speech synthesis, and transcription, all through the chat-style
// generateContent endpoint with inline base64 attachments.
package gemini
