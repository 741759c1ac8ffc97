// Package attest signs and verifies canonical records with secp256k1 ECDSA.
//
// The signed digest is SHA256(record.Encode(r)). Signatures are RFC 6979
// deterministic, always low-S, and travel as 64-byte compact r||s with the
// recovery id dropped. A signature that fails to verify is reported as
// false, never as an error.
package attest

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/record"
)

var errSelfVerify = errors.New("attest: produced signature does not verify")

// Signer produces signature envelopes with one private key.
// It is safe for concurrent use.
type Signer struct {
	key *PrivateKey
	pub [PublicKeySize]byte
}

// NewSigner wraps key.
func NewSigner(key *PrivateKey) *Signer {
	return &Signer{key: key, pub: key.PublicKey()}
}

// PublicKey returns the compressed public key placed in every envelope.
func (s *Signer) PublicKey() [PublicKeySize]byte {
	return s.pub
}

// Sign canonically encodes r, signs its SHA-256 digest and returns the
// envelope. The envelope is verified before it is returned.
func (s *Signer) Sign(r record.Record) (SignatureEnvelope, error) {
	msg, err := record.Encode(r)
	if err != nil {
		return SignatureEnvelope{}, err
	}
	digest := sha256.Sum256(msg)

	compact := ecdsa.SignCompact(s.key.key, digest[:], true)

	env := SignatureEnvelope{Entity: r, PublicKey: s.pub}
	copy(env.Signature[:], compact[1:])

	if !verifyDigest(env.Signature[:], digest[:], s.key.key.PubKey()) {
		return SignatureEnvelope{}, errSelfVerify
	}
	return env, nil
}

// Verify reports whether signature is a valid low-S signature of r under
// publicKey. Errors are returned only for an unencodable record or an
// unparseable public key.
func Verify(signature []byte, r record.Record, publicKey []byte) (bool, error) {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return false, err
	}
	msg, err := record.Encode(r)
	if err != nil {
		return false, err
	}
	digest := sha256.Sum256(msg)
	return verifyDigest(signature, digest[:], pub), nil
}

// VerifyHex is Verify for hex encoded signature and public key.
func VerifyHex(signatureHex string, r record.Record, publicKeyHex string) (bool, error) {
	sig, err := codec.DecodeHex(signatureHex)
	if err != nil {
		return false, err
	}
	pub, err := codec.DecodeHex(publicKeyHex)
	if err != nil {
		return false, err
	}
	return Verify(sig, r, pub)
}

func verifyDigest(sig, digest []byte, pub *secp256k1.PublicKey) bool {
	if len(sig) != SignatureSize {
		return false
	}
	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(sig[:32]) || r.IsZero() {
		return false
	}
	if s.SetByteSlice(sig[32:]) || s.IsZero() {
		return false
	}
	// Only the low-S form is accepted.
	if s.IsOverHalfOrder() {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(digest, pub)
}
