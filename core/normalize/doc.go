// Package normalize extracts structured JSON embedded in free-form model
// text. Backends frequently return a blended narrative-plus-JSON payload: a
// sentence or two describing a generated artifact with an embedded JSON
// object carrying machine fields such as "description" and "response".
//
// Extraction is best-effort by contract: when no candidate parses, the
// original text is returned tagged raw instead of an error.
package normalize
