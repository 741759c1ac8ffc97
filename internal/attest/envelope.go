package attest

import (
	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/record"
)

// SignatureEnvelope binds a record to its signature and signer public key.
type SignatureEnvelope struct {
	Entity    record.Record
	Signature [SignatureSize]byte
	PublicKey [PublicKeySize]byte
}

// SignatureHex returns the signature as lowercase hex.
func (e SignatureEnvelope) SignatureHex() string {
	return codec.EncodeHex(e.Signature[:])
}

// PublicKeyHex returns the public key as lowercase hex.
func (e SignatureEnvelope) PublicKeyHex() string {
	return codec.EncodeHex(e.PublicKey[:])
}

// Attestable re-verifies the envelope.
func (e SignatureEnvelope) Attestable() bool {
	ok, err := Verify(e.Signature[:], e.Entity, e.PublicKey[:])
	return err == nil && ok
}
