// Package utils contains small internal helpers shared by the provider
// implementations: generic JSON and multipart HTTP POST helpers with
// observability hooks, string truncation for log output, and a generic
// pointer constructor.
package utils
