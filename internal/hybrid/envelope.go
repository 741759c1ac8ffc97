package hybrid

import (
	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/protoerr"
)

// Envelope is the output of Seal.
type Envelope struct {
	CipherText      []byte
	Nonce           []byte
	EphemeralPubKey []byte
}

// WireEnvelope is the base58 form carried in contract messages.
type WireEnvelope struct {
	CipherText      string `json:"cipher_text"`
	Nonce           string `json:"nonce"`
	EphemeralPubKey string `json:"ephemeral_pubkey"`
}

// Wire encodes every field as base58.
func (e Envelope) Wire() WireEnvelope {
	return WireEnvelope{
		CipherText:      codec.EncodeBase58(e.CipherText),
		Nonce:           codec.EncodeBase58(e.Nonce),
		EphemeralPubKey: codec.EncodeBase58(e.EphemeralPubKey),
	}
}

// ParseWire decodes a WireEnvelope and checks the nonce and key lengths.
func ParseWire(w WireEnvelope) (Envelope, error) {
	ct, err := codec.DecodeBase58(w.CipherText)
	if err != nil {
		return Envelope{}, err
	}
	nonce, err := codec.DecodeBase58(w.Nonce)
	if err != nil {
		return Envelope{}, err
	}
	if len(nonce) != NonceSize {
		return Envelope{}, protoerr.InvalidKey("parse", "nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	eph, err := codec.DecodeBase58(w.EphemeralPubKey)
	if err != nil {
		return Envelope{}, err
	}
	if len(eph) != KeySize {
		return Envelope{}, protoerr.InvalidKey("parse", "ephemeral key must be %d bytes, got %d", KeySize, len(eph))
	}
	return Envelope{CipherText: ct, Nonce: nonce, EphemeralPubKey: eph}, nil
}
