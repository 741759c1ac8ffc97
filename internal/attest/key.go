package attest

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/protoerr"
)

const (
	// PrivateKeySize is the length of a raw secp256k1 scalar.
	PrivateKeySize = 32
	// PublicKeySize is the length of a compressed SEC1 public key.
	PublicKeySize = 33
	// SignatureSize is the length of a compact r||s signature.
	SignatureSize = 64
)

// PrivateKey is a secp256k1 signing key. It never prints its scalar.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// ParsePrivateKey parses a raw 32-byte big-endian scalar. Zero and values
// not below the group order are rejected.
func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, protoerr.InvalidKey("parse", "expected %d bytes, got %d", PrivateKeySize, len(b))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		return nil, protoerr.InvalidKey("parse", "scalar is not below the curve order")
	}
	if s.IsZero() {
		return nil, protoerr.InvalidKey("parse", "scalar is zero")
	}
	return &PrivateKey{key: secp256k1.NewPrivateKey(&s)}, nil
}

// ParsePrivateKeyHex parses a hex encoded scalar, with or without 0x.
func ParsePrivateKeyHex(s string) (*PrivateKey, error) {
	raw, err := codec.DecodeHex(s)
	if err != nil {
		return nil, &protoerr.InvalidKeyError{Op: "parse", Message: "private key is not hex", Err: err}
	}
	defer clear(raw)
	return ParsePrivateKey(raw)
}

// PublicKey returns the 33-byte compressed public key.
func (k *PrivateKey) PublicKey() [PublicKeySize]byte {
	var out [PublicKeySize]byte
	copy(out[:], k.key.PubKey().SerializeCompressed())
	return out
}

// Zero clears the scalar. The key is unusable afterwards.
func (k *PrivateKey) Zero() {
	k.key.Zero()
}

func (k *PrivateKey) String() string   { return "attest.PrivateKey(REDACTED)" }
func (k *PrivateKey) GoString() string { return k.String() }

// ParsePublicKey parses a compressed or uncompressed SEC1 public key.
func ParsePublicKey(b []byte) (*secp256k1.PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, &protoerr.InvalidKeyError{Op: "parse", Message: "malformed public key", Err: err}
	}
	return pub, nil
}
