package protoerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"invalid key", InvalidKey("sign", "scalar is zero"), IsInvalidKeyError},
		{"encoding", Encoding("hashes[0]", "expected string"), IsEncodingError},
		{"date", Date(MsgInvalidDateFormat, "01-01-2025"), IsDateError},
		{"decoding", Decoding("base58", "invalid character", nil), IsDecodingError},
		{"decryption", &DecryptionError{Message: "authentication failed"}, IsDecryptionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.True(t, tt.is(fmt.Errorf("wrapped: %w", tt.err)), "must classify through wrapping")

			for _, other := range tests {
				if other.name != tt.name {
					assert.False(t, other.is(tt.err), "%s must not classify as %s", tt.name, other.name)
				}
			}
		})
	}

	assert.False(t, IsDateError(nil))
	assert.False(t, IsDecodingError(errors.New("plain")))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `Invalid date format: "2025/01/01"`, Date(MsgInvalidDateFormat, "2025/01/01").Error())
	assert.Equal(t, "Date before EPOCH", Date(MsgDateBeforeEpoch, "").Error())
	assert.Equal(t, "encoding (encode): owner: required field missing",
		Encoding("owner", "required field missing").Error())
	assert.Equal(t, "invalid key (parse): expected 32 bytes, got 31",
		InvalidKey("parse", "expected %d bytes, got %d", 32, 31).Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("bad checksum")
	err := Decoding("bech32", "malformed address", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "decoding (bech32): malformed address: bad checksum", err.Error())
}
