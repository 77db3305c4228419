// Package journal is a durable, append-only log of write-path signals.
//
// Every signal applied to the cache can be appended here and folded back
// into a snapshot later with Replay, so a cache can be rebuilt after a
// restart or inspected offline.
//
// # Ordering
//
// Entries are ordered by seq, a logical clock owned by the journal, never by
// wall time. Every query orders by seq ASC, id ASC COLLATE BINARY so reads
// and replays are deterministic.
//
// # Identity
//
// Entry ids are UUIDv7 strings by default. Tests inject a fixed generator.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - single open connection: one writer
//
// Payloads are stored as canonical JSON (RFC 8785), so identical signals
// are stored byte for byte identically.
package journal
