package hybrid

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/outbe/tribute-attest/internal/protoerr"
	"github.com/outbe/tribute-attest/internal/record"
)

// HKDFInfo is the HKDF info string shared with the contract.
const HKDFInfo = "tribute-factory-encryption"

// NonceSize is the ChaCha20-Poly1305 nonce length.
const NonceSize = chacha20poly1305.NonceSize

// Option configures Seal and Open.
type Option func(*options)

type options struct {
	rand      io.Reader
	legacyRaw bool
}

// WithRand replaces crypto/rand as the entropy source. Tests only.
func WithRand(r io.Reader) Option {
	return func(o *options) { o.rand = r }
}

// WithLegacyRawKey uses the X25519 shared secret directly as the cipher key
// when the recipient has no salt.
//
// Deprecated: kept to talk to deployments that predate HKDF. Both sides
// must agree; new deployments publish a salt.
func WithLegacyRawKey() Option {
	return func(o *options) { o.legacyRaw = true }
}

func buildOptions(opts []Option) options {
	o := options{rand: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Seal encrypts plaintext for recipient.
func Seal(plaintext []byte, recipient Recipient, opts ...Option) (Envelope, error) {
	o := buildOptions(opts)

	var eph [KeySize]byte
	defer clear(eph[:])
	if _, err := io.ReadFull(o.rand, eph[:]); err != nil {
		return Envelope{}, fmt.Errorf("hybrid: read ephemeral key: %w", err)
	}
	ephPub, err := curve25519.X25519(eph[:], curve25519.Basepoint)
	if err != nil {
		return Envelope{}, fmt.Errorf("hybrid: derive ephemeral public key: %w", err)
	}

	key, err := deriveKey(eph[:], recipient.PublicKey[:], recipient.Salt, o.legacyRaw)
	if err != nil {
		return Envelope{}, err
	}
	defer clear(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return Envelope{}, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(o.rand, nonce); err != nil {
		return Envelope{}, fmt.Errorf("hybrid: read nonce: %w", err)
	}

	return Envelope{
		CipherText:      aead.Seal(nil, nonce, plaintext, nil),
		Nonce:           nonce,
		EphemeralPubKey: ephPub,
	}, nil
}

// SealRecord canonically encodes r and seals the bytes.
func SealRecord(r record.Record, recipient Recipient, opts ...Option) (Envelope, error) {
	plaintext, err := record.Encode(r)
	if err != nil {
		return Envelope{}, err
	}
	return Seal(plaintext, recipient, opts...)
}

// Open decrypts env with the recipient private key and salt. This is the
// receiving side, used for round trips and TEE tooling.
func Open(env Envelope, privateKey [KeySize]byte, salt []byte, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)

	if len(env.Nonce) != NonceSize {
		return nil, protoerr.InvalidKey("open", "nonce must be %d bytes, got %d", NonceSize, len(env.Nonce))
	}
	if len(env.EphemeralPubKey) != KeySize {
		return nil, protoerr.InvalidKey("open", "ephemeral key must be %d bytes, got %d", KeySize, len(env.EphemeralPubKey))
	}

	key, err := deriveKey(privateKey[:], env.EphemeralPubKey, salt, o.legacyRaw)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.CipherText, nil)
	if err != nil {
		return nil, &protoerr.DecryptionError{Message: "authentication failed", Err: err}
	}
	return plaintext, nil
}

func deriveKey(scalar, point, salt []byte, legacyRaw bool) ([]byte, error) {
	if len(salt) == 0 && !legacyRaw {
		return nil, protoerr.InvalidKey("derive", "recipient has no salt")
	}
	if len(salt) > 0 {
		if err := checkSalt(salt); err != nil {
			return nil, err
		}
	}

	shared, err := curve25519.X25519(scalar, point)
	if err != nil {
		// Low-order points yield an all-zero secret.
		return nil, &protoerr.InvalidKeyError{Op: "derive", Message: "peer public key is a low-order point", Err: err}
	}
	if len(salt) == 0 {
		return shared, nil
	}
	defer clear(shared)

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, salt, []byte(HKDFInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}
