package hybrid

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/protoerr"
	"github.com/outbe/tribute-attest/internal/record"
	"github.com/outbe/tribute-attest/internal/testutil"
)

var testSalt = bytes.Repeat([]byte{1}, 32)

func testKeyPair(t *testing.T) KeyPair {
	t.Helper()
	kp, err := GenerateKeyPair(testutil.NewDeterministicReader("recipient"))
	require.NoError(t, err)
	return kp
}

func TestSealOpen_RoundTrip(t *testing.T) {
	kp := testKeyPair(t)
	plaintext := []byte(`{"tribute_draft_id":"00"}`)

	env, err := Seal(plaintext, kp.Recipient(testSalt))
	require.NoError(t, err)
	assert.Len(t, env.Nonce, NonceSize)
	assert.Len(t, env.EphemeralPubKey, KeySize)
	assert.Len(t, env.CipherText, len(plaintext)+16)

	got, err := Open(env, kp.PrivateKey, testSalt)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestSeal_EmptyPlaintext(t *testing.T) {
	kp := testKeyPair(t)
	env, err := Seal(nil, kp.Recipient(testSalt))
	require.NoError(t, err)

	got, err := Open(env, kp.PrivateKey, testSalt)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSeal_FreshPerCall(t *testing.T) {
	kp := testKeyPair(t)
	plaintext := []byte("same input")

	a, err := Seal(plaintext, kp.Recipient(testSalt))
	require.NoError(t, err)
	b, err := Seal(plaintext, kp.Recipient(testSalt))
	require.NoError(t, err)

	assert.NotEqual(t, a.CipherText, b.CipherText)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.EphemeralPubKey, b.EphemeralPubKey)
}

func TestSeal_DeterministicReader(t *testing.T) {
	kp := testKeyPair(t)
	plaintext := []byte("pinned")

	a, err := Seal(plaintext, kp.Recipient(testSalt), WithRand(testutil.NewDeterministicReader("eph")))
	require.NoError(t, err)
	b, err := Seal(plaintext, kp.Recipient(testSalt), WithRand(testutil.NewDeterministicReader("eph")))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestOpen_Tampered(t *testing.T) {
	kp := testKeyPair(t)
	env, err := Seal([]byte("payload"), kp.Recipient(testSalt), WithRand(testutil.NewDeterministicReader("tamper")))
	require.NoError(t, err)

	flip := func(b []byte) []byte {
		out := append([]byte(nil), b...)
		out[0] ^= 0x01
		return out
	}

	tests := []struct {
		name string
		env  Envelope
	}{
		{"cipher text", Envelope{CipherText: flip(env.CipherText), Nonce: env.Nonce, EphemeralPubKey: env.EphemeralPubKey}},
		{"nonce", Envelope{CipherText: env.CipherText, Nonce: flip(env.Nonce), EphemeralPubKey: env.EphemeralPubKey}},
		{"ephemeral key", Envelope{CipherText: env.CipherText, Nonce: env.Nonce, EphemeralPubKey: flip(env.EphemeralPubKey)}},
		{"truncated", Envelope{CipherText: env.CipherText[:len(env.CipherText)-1], Nonce: env.Nonce, EphemeralPubKey: env.EphemeralPubKey}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.env, kp.PrivateKey, testSalt)
			require.Error(t, err)
			assert.True(t, protoerr.IsDecryptionError(err), "got %v", err)
		})
	}
}

func TestOpen_WrongKeyOrSalt(t *testing.T) {
	kp := testKeyPair(t)
	env, err := Seal([]byte("payload"), kp.Recipient(testSalt))
	require.NoError(t, err)

	other, err := GenerateKeyPair(testutil.NewDeterministicReader("someone else"))
	require.NoError(t, err)
	_, err = Open(env, other.PrivateKey, testSalt)
	assert.True(t, protoerr.IsDecryptionError(err))

	_, err = Open(env, kp.PrivateKey, bytes.Repeat([]byte{2}, 32))
	assert.True(t, protoerr.IsDecryptionError(err))
}

func TestOpen_BadLengths(t *testing.T) {
	kp := testKeyPair(t)
	_, err := Open(Envelope{Nonce: make([]byte, 8), EphemeralPubKey: make([]byte, KeySize)}, kp.PrivateKey, testSalt)
	assert.True(t, protoerr.IsInvalidKeyError(err))

	_, err = Open(Envelope{Nonce: make([]byte, NonceSize), EphemeralPubKey: make([]byte, 16)}, kp.PrivateKey, testSalt)
	assert.True(t, protoerr.IsInvalidKeyError(err))
}

func TestSeal_SaltRequired(t *testing.T) {
	kp := testKeyPair(t)

	_, err := Seal([]byte("x"), kp.Recipient(nil))
	require.Error(t, err)
	assert.True(t, protoerr.IsInvalidKeyError(err))

	_, err = Seal([]byte("x"), kp.Recipient(make([]byte, 8)))
	assert.True(t, protoerr.IsInvalidKeyError(err))

	_, err = Seal([]byte("x"), kp.Recipient(make([]byte, 33)))
	assert.True(t, protoerr.IsInvalidKeyError(err))
}

func TestSeal_LegacyRawKey(t *testing.T) {
	kp := testKeyPair(t)

	env, err := Seal([]byte("legacy"), kp.Recipient(nil), WithLegacyRawKey())
	require.NoError(t, err)

	got, err := Open(env, kp.PrivateKey, nil, WithLegacyRawKey())
	require.NoError(t, err)
	assert.Equal(t, []byte("legacy"), got)

	_, err = Open(env, kp.PrivateKey, nil)
	assert.True(t, protoerr.IsInvalidKeyError(err), "raw mode must be requested on both sides")
}

func TestSeal_LowOrderRecipient(t *testing.T) {
	_, err := Seal([]byte("x"), Recipient{Salt: testSalt})
	require.Error(t, err)
	assert.True(t, protoerr.IsInvalidKeyError(err))
}

func TestSeal_EntropyFailure(t *testing.T) {
	kp := testKeyPair(t)

	_, err := Seal([]byte("x"), kp.Recipient(testSalt), WithRand(&testutil.FailingReader{}))
	assert.ErrorIs(t, err, testutil.ErrEntropy)

	// Enough for the ephemeral key but not the nonce.
	_, err = Seal([]byte("x"), kp.Recipient(testSalt), WithRand(&testutil.FailingReader{Budget: KeySize}))
	assert.ErrorIs(t, err, testutil.ErrEntropy)

	_, err = GenerateKeyPair(&testutil.FailingReader{})
	assert.ErrorIs(t, err, testutil.ErrEntropy)
}

func TestSeal_Concurrent(t *testing.T) {
	kp := testKeyPair(t)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := []byte{byte(i)}
			env, err := Seal(msg, kp.Recipient(testSalt))
			if !assert.NoError(t, err) {
				return
			}
			got, err := Open(env, kp.PrivateKey, testSalt)
			assert.NoError(t, err)
			assert.Equal(t, msg, got)
		}()
	}
	wg.Wait()
}

func TestSealRecord(t *testing.T) {
	kp := testKeyPair(t)
	cu := testutil.ConsumptionUnit(t)

	env, err := SealRecord(cu, kp.Recipient(testSalt))
	require.NoError(t, err)
	got, err := Open(env, kp.PrivateKey, testSalt)
	require.NoError(t, err)
	assert.Equal(t, record.MustEncode(cu), got)

	_, err = SealRecord(cu.Without("owner"), kp.Recipient(testSalt))
	assert.True(t, protoerr.IsEncodingError(err))
}

func TestWire_RoundTrip(t *testing.T) {
	kp := testKeyPair(t)
	env, err := Seal([]byte("wire"), kp.Recipient(testSalt))
	require.NoError(t, err)

	parsed, err := ParseWire(env.Wire())
	require.NoError(t, err)
	assert.Equal(t, env, parsed)
}

func TestParseWire_Errors(t *testing.T) {
	good := Envelope{
		CipherText:      []byte("ct"),
		Nonce:           make([]byte, NonceSize),
		EphemeralPubKey: bytes.Repeat([]byte{9}, KeySize),
	}.Wire()

	bad := good
	bad.CipherText = "0OIl"
	_, err := ParseWire(bad)
	assert.True(t, protoerr.IsDecodingError(err))

	bad = good
	bad.Nonce = codec.EncodeBase58(make([]byte, 8))
	_, err = ParseWire(bad)
	assert.True(t, protoerr.IsInvalidKeyError(err))

	bad = good
	bad.EphemeralPubKey = codec.EncodeBase58(make([]byte, 31))
	_, err = ParseWire(bad)
	assert.True(t, protoerr.IsInvalidKeyError(err))
}

func TestParseRecipient(t *testing.T) {
	kp := testKeyPair(t)
	pubHex := codec.EncodeHex(kp.PublicKey[:])
	saltB58 := codec.EncodeBase58(testSalt)

	tests := []struct {
		name string
		pub  string
		salt string
	}{
		{"hex key", pubHex, saltB58},
		{"base58 key", codec.EncodeBase58(kp.PublicKey[:]), saltB58},
		{"tagged hex key", "00" + pubHex, saltB58},
		{"hex salt", pubHex, "0x" + codec.EncodeHex(testSalt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRecipient(tt.pub, tt.salt)
			require.NoError(t, err)
			assert.Equal(t, kp.PublicKey, r.PublicKey)
			assert.Equal(t, testSalt, r.Salt)
		})
	}

	r, err := ParseRecipient(pubHex, "")
	require.NoError(t, err)
	assert.Empty(t, r.Salt)

	_, err = ParseRecipient(pubHex, codec.EncodeBase58(make([]byte, 4)))
	assert.True(t, protoerr.IsInvalidKeyError(err))

	_, err = ParseRecipient(pubHex[:60], saltB58)
	assert.Error(t, err)
}

func TestParseSalt(t *testing.T) {
	salt, err := ParseSalt("0x" + codec.EncodeHex(testSalt))
	require.NoError(t, err)
	assert.Equal(t, testSalt, salt)

	salt, err = ParseSalt(codec.EncodeBase58(testSalt[:16]))
	require.NoError(t, err)
	assert.Equal(t, testSalt[:16], salt)

	_, err = ParseSalt("0xzz")
	assert.True(t, protoerr.IsDecodingError(err))

	_, err = ParseSalt(codec.EncodeBase58(make([]byte, 33)))
	assert.True(t, protoerr.IsInvalidKeyError(err))
}
