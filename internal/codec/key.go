package codec

import (
	"github.com/outbe/tribute-attest/internal/protoerr"
)

// DecodeKey decodes fixed-size key material published by a contract.
//
// Keys are accepted as hex when the string is exactly 2*size or 2*(size+1)
// hex digits and as base58 otherwise. The (size+1)-byte form carries a zero
// tag byte in front of the key, which is stripped. Any other decoded length
// is an InvalidKeyError.
func DecodeKey(s string, size int) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if (len(s) == 2*size || len(s) == 2*(size+1)) && IsHex(s) {
		raw, err = DecodeHex(s)
	} else {
		raw, err = DecodeBase58(s)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case len(raw) == size:
		return raw, nil
	case len(raw) == size+1 && raw[0] == 0x00:
		return raw[1:], nil
	default:
		return nil, protoerr.InvalidKey("decode", "expected %d-byte key, got %d bytes", size, len(raw))
	}
}
