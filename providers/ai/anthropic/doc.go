// Package anthropic implements the ai.Provider contract for Anthropic's
// Messages API. It carries the narrowest capability set of the HTTP backends:
// text generation and image analysis only, with no audio or image output.
package anthropic
