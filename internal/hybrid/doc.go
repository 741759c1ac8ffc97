// Package hybrid encrypts payloads for a TEE-resident recipient.
//
// Every Seal draws a fresh ephemeral X25519 key and a fresh 12-byte nonce,
// derives the symmetric key with HKDF-SHA256 over the shared secret and the
// recipient salt (info "tribute-factory-encryption"), and encrypts with
// ChaCha20-Poly1305 without associated data. The recipient learns the
// ephemeral public key from the envelope; the ephemeral private key is
// wiped after use and never leaves Seal.
//
// Nothing in this package holds mutable state, so all functions are safe
// for concurrent use.
package hybrid
