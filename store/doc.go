// Package store is a thin typed wrapper over the DynamoDB primitives the
// ordering service relies on: point get, unconditional and conditional put,
// conditional single-field update, prefix-range query within a partition,
// and chunked batch get.
//
// Every item is addressed by the composite (PK, SK) string pair produced by
// the keys package. The store performs no internal retries; transient faults
// surface as ErrUnavailable so retry policy can live with the client
// configuration that owns the connection.
package store
