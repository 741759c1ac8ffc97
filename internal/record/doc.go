// Package record models the raw records that get attested or encrypted
// (consumption units, tributes, tribute inputs) and produces their canonical
// byte encoding.
//
// A Record is bound to a Schema. The schema fixes the field order of the
// encoded object, so two records holding the same values always encode to
// the same bytes regardless of how they were built. Free-form Object values
// nested inside a record have no schema and are encoded with RFC 8785 key
// ordering instead.
//
// Key constraints:
//   - NO float values anywhere; large amounts travel as decimal strings
//   - NO null; optional fields are simply absent
//   - strings are NFC-normalized at the encoding boundary
//   - output is compact JSON with no HTML escaping
package record
