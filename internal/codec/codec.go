// Package codec decodes and encodes the wire formats used by contract
// messages: lowercase hex for keys and signatures, base58 for encrypted
// envelope fields and salts, and bech32 for account addresses.
//
// Every decode failure is reported as a *protoerr.DecodingError so callers
// never receive partially decoded bytes.
package codec

import (
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/outbe/tribute-attest/internal/protoerr"
)

// EncodeHex returns the lowercase hex encoding of b.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex decodes a hex string. An optional 0x prefix is accepted and both
// letter cases are allowed.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, protoerr.Decoding("hex", "malformed hex string", err)
	}
	return b, nil
}

// EncodeBase58 returns the base58 (Bitcoin alphabet) encoding of b.
func EncodeBase58(b []byte) string {
	return base58.Encode(b)
}

// DecodeBase58 decodes a base58 string. The empty string decodes to an empty
// slice.
func DecodeBase58(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, protoerr.Decoding("base58", "malformed base58 string", err)
	}
	return b, nil
}

// IsHex reports whether s consists only of hex digits and has even length.
func IsHex(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
