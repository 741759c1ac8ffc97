package hybrid

import (
	"crypto/rand"
	"io"
	"strings"

	"golang.org/x/crypto/curve25519"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/protoerr"
)

const (
	// KeySize is the length of X25519 public and private keys.
	KeySize = curve25519.ScalarSize
	// MinSaltSize and MaxSaltSize bound the HKDF salt.
	MinSaltSize = 16
	MaxSaltSize = 32
)

// Recipient is the public encryption material of a contract.
type Recipient struct {
	PublicKey [KeySize]byte
	Salt      []byte
}

// ParseRecipient decodes the wire form published by a contract. The public
// key is hex or base58 (see codec.DecodeKey). The salt is base58, or hex
// when prefixed with 0x. An empty salt is allowed here and rejected by
// Seal unless the legacy raw-key mode is requested.
func ParseRecipient(publicKey, salt string) (Recipient, error) {
	raw, err := codec.DecodeKey(publicKey, KeySize)
	if err != nil {
		return Recipient{}, err
	}
	var r Recipient
	copy(r.PublicKey[:], raw)

	if r.Salt, err = ParseSalt(salt); err != nil {
		return Recipient{}, err
	}
	return r, nil
}

// ParseSalt decodes a base58 or 0x-prefixed hex salt. The empty string
// yields an empty salt.
func ParseSalt(s string) ([]byte, error) {
	var (
		salt []byte
		err  error
	)
	if strings.HasPrefix(s, "0x") {
		salt, err = codec.DecodeHex(s)
	} else {
		salt, err = codec.DecodeBase58(s)
	}
	if err != nil {
		return nil, err
	}
	if len(salt) > 0 {
		if err := checkSalt(salt); err != nil {
			return nil, err
		}
	}
	return salt, nil
}

func checkSalt(salt []byte) error {
	if len(salt) < MinSaltSize || len(salt) > MaxSaltSize {
		return protoerr.InvalidKey("salt", "salt must be %d to %d bytes, got %d", MinSaltSize, MaxSaltSize, len(salt))
	}
	return nil
}

// KeyPair is a recipient X25519 key pair.
type KeyPair struct {
	PrivateKey [KeySize]byte
	PublicKey  [KeySize]byte
}

// GenerateKeyPair draws a recipient key pair from rand, or crypto/rand when
// rand is nil.
func GenerateKeyPair(rnd io.Reader) (KeyPair, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	var kp KeyPair
	if _, err := io.ReadFull(rnd, kp.PrivateKey[:]); err != nil {
		return KeyPair{}, err
	}
	pub, err := curve25519.X25519(kp.PrivateKey[:], curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, err
	}
	copy(kp.PublicKey[:], pub)
	return kp, nil
}

// Recipient returns the public half paired with salt.
func (kp KeyPair) Recipient(salt []byte) Recipient {
	return Recipient{PublicKey: kp.PublicKey, Salt: salt}
}
