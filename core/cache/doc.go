// Package cache implements the content-addressable store consulted before
// dispatch and populated after successful cacheable calls.
//
// Two tiers back the store: an in-process map whose entries expire on a
// per-entry timer, and a persistent on-disk tier where each artifact is a
// file named by its key hash under a capability-scoped directory, with a
// SQLite index carrying the metadata (format, size, creation time). Lookup
// order is memory, then disk; a network result is persisted to disk first
// and only then mirrored into memory. Disk entries are removed only by an
// explicit per-capability Clear; there is no automatic disk eviction.
package cache
