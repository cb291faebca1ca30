// Package codec is the storage encoding for charts: deterministic CBOR
// for snapshots and settings, BLAKE3 fingerprints over that encoding,
// and zstd compression for the blobs written to the database.
//
// Deterministic encoding matters for the fingerprint: two structurally
// equal snapshots always encode to the same bytes, so comparing
// fingerprints detects a no-op edit without walking the document.
package codec
