// Package record provides the value model for entity records held by the
// resource store.
//
// Records are JSON-like objects built from a small sealed set of value types
// (Null, String, Int, Float, Bool, List, Object). Numbers written without a
// fraction or exponent stay Int so that ids and positions keep full int64
// precision.
//
// A Record wraps an Object and exposes the link metadata the API attaches to
// entities:
//   - "id": remote identity used by the secondary index
//   - "_links": relation name -> link object
//   - "_embedded": relation name -> id of the referenced entity
//
// Canonical JSON (RFC 8785 key order, NFC strings, no HTML escaping) is used
// for golden output and for the journal payload column.
package record
