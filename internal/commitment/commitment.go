// Package commitment derives commitment IDs: deterministic, content-addressed
// identifiers of (owner, logical day) used to deduplicate claims before they
// are accepted on-chain.
//
// Two schemes exist and they are NOT interoperable. Every ID carries its
// Scheme so a verifier always knows which derivation produced it:
//
//	sha256-le/v1      SHA256(owner_bytes || le32(day))                       (default)
//	blake3-tagged/v0  BLAKE3("tribute_draft_id" ":" owner_display ":" day)   (legacy)
package commitment

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/epoch"
)

// Scheme identifies a derivation algorithm. The version suffix is part of
// the identity.
type Scheme string

const (
	SchemeSHA256LE     Scheme = "sha256-le/v1"
	SchemeBLAKE3Tagged Scheme = "blake3-tagged/v0"

	// DefaultScheme is used when a deployment does not configure one.
	DefaultScheme = SchemeSHA256LE
)

// DraftIDTag is the domain tag of the legacy scheme.
const DraftIDTag = "tribute_draft_id"

// ErrEmptyOwner is returned when the owner address has no payload bytes.
var ErrEmptyOwner = errors.New("commitment: owner address is empty")

// Schemes returns every supported scheme, default first.
func Schemes() []Scheme {
	return []Scheme{SchemeSHA256LE, SchemeBLAKE3Tagged}
}

// ParseScheme validates a scheme name.
func ParseScheme(s string) (Scheme, error) {
	for _, known := range Schemes() {
		if Scheme(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown commitment scheme %q", s)
}

// Deriver derives commitment IDs under one scheme.
type Deriver interface {
	Scheme() Scheme
	Derive(owner codec.Address, day epoch.Day) (ID, error)
}

// NewDeriver returns the deriver for scheme.
func NewDeriver(scheme Scheme) (Deriver, error) {
	switch scheme {
	case SchemeSHA256LE:
		return sha256LE{}, nil
	case SchemeBLAKE3Tagged:
		return blake3Tagged{}, nil
	}
	return nil, fmt.Errorf("unknown commitment scheme %q", scheme)
}

type sha256LE struct{}

func (sha256LE) Scheme() Scheme { return SchemeSHA256LE }

func (sha256LE) Derive(owner codec.Address, day epoch.Day) (ID, error) {
	if len(owner.Bytes) == 0 {
		return ID{}, ErrEmptyOwner
	}
	h := sha256.New()
	h.Write(owner.Bytes)
	h.Write(binary.LittleEndian.AppendUint32(nil, uint32(day)))

	id := ID{Scheme: SchemeSHA256LE}
	copy(id.Digest[:], h.Sum(nil))
	return id, nil
}

type blake3Tagged struct{}

func (blake3Tagged) Scheme() Scheme { return SchemeBLAKE3Tagged }

func (blake3Tagged) Derive(owner codec.Address, day epoch.Day) (ID, error) {
	if owner.Display == "" {
		return ID{}, ErrEmptyOwner
	}
	h := blake3.New()
	h.Write([]byte(DraftIDTag + ":" + owner.Display + ":" + day.String()))

	id := ID{Scheme: SchemeBLAKE3Tagged}
	copy(id.Digest[:], h.Sum(nil))
	return id, nil
}

// ID is a commitment identifier. Identity is the pair (Scheme, Digest).
type ID struct {
	Scheme Scheme
	Digest [32]byte
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id.Scheme == "" && id.Digest == [32]byte{}
}

// Equal compares scheme and digest. IDs from different schemes are never
// equal, even if their digests happen to match.
func (id ID) Equal(other ID) bool {
	return id.Scheme == other.Scheme && bytes.Equal(id.Digest[:], other.Digest[:])
}

// Hex returns the digest as lowercase hex. This is the on-chain
// tribute_draft_id form.
func (id ID) Hex() string {
	return codec.EncodeHex(id.Digest[:])
}

// Base58 returns the digest in base58.
func (id ID) Base58() string {
	return codec.EncodeBase58(id.Digest[:])
}

// String returns "<scheme>:<hex>".
func (id ID) String() string {
	return string(id.Scheme) + ":" + id.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID parses the "<scheme>:<hex>" form produced by String.
func ParseID(s string) (ID, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return ID{}, fmt.Errorf("commitment id %q: missing scheme", s)
	}
	scheme, err := ParseScheme(s[:i])
	if err != nil {
		return ID{}, err
	}
	raw, err := codec.DecodeHex(s[i+1:])
	if err != nil {
		return ID{}, err
	}
	if len(raw) != 32 {
		return ID{}, fmt.Errorf("commitment id %q: expected 32-byte digest, got %d", s, len(raw))
	}
	id := ID{Scheme: scheme}
	copy(id.Digest[:], raw)
	return id, nil
}
