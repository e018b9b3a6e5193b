// Package openai implements the ai.Provider contract for OpenAI's API. Text
// and vision go through the Responses endpoint with a flat input array; image
// generation rides the same endpoint as a built-in tool; speech synthesis and
// transcription use the dedicated audio endpoints (binary response and
// multipart upload respectively).
package openai
