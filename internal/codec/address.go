package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/outbe/tribute-attest/internal/protoerr"
)

// Address is a decoded bech32 account address.
type Address struct {
	// HRP is the human-readable prefix, e.g. "outbe".
	HRP string
	// Bytes is the raw account payload. This is what gets hashed.
	Bytes []byte
	// Display is the normalized (lowercase) bech32 string.
	Display string
}

// String returns the display form.
func (a Address) String() string {
	return a.Display
}

// Equal reports whether two addresses carry the same prefix and payload.
func (a Address) Equal(b Address) bool {
	return a.HRP == b.HRP && bytes.Equal(a.Bytes, b.Bytes)
}

// DecodeAddress decodes a bech32 address into its prefix and raw bytes.
func DecodeAddress(s string) (Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return Address{}, protoerr.Decoding("bech32", fmt.Sprintf("malformed address %q", s), err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, protoerr.Decoding("bech32", fmt.Sprintf("malformed address payload %q", s), err)
	}
	if len(raw) == 0 {
		return Address{}, protoerr.Decoding("bech32", fmt.Sprintf("empty address payload %q", s), nil)
	}
	return Address{HRP: hrp, Bytes: raw, Display: strings.ToLower(s)}, nil
}

// DecodeAddressWithPrefix decodes s and requires its prefix to equal hrp.
func DecodeAddressWithPrefix(s, hrp string) (Address, error) {
	addr, err := DecodeAddress(s)
	if err != nil {
		return Address{}, err
	}
	if addr.HRP != hrp {
		return Address{}, protoerr.Decoding("bech32",
			fmt.Sprintf("address %q has prefix %q, want %q", s, addr.HRP, hrp), nil)
	}
	return addr, nil
}

// EncodeAddress encodes raw account bytes under hrp.
func EncodeAddress(hrp string, raw []byte) (Address, error) {
	s, err := bech32.EncodeFromBase256(hrp, raw)
	if err != nil {
		return Address{}, fmt.Errorf("encode address: %w", err)
	}
	return Address{HRP: hrp, Bytes: append([]byte(nil), raw...), Display: s}, nil
}
