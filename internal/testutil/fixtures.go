package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/record"
	"github.com/outbe/tribute-attest/internal/schema"
)

// Fixture material shared by package tests. None of it is secret.
const (
	// PrivateKeyHex is a secp256k1 test key.
	PrivateKeyHex = "4236627b5a03b3f2e601141a883ccdb23aeef15c910a0789e4343aad394cbf6d"
	// PublicKeyHex is the compressed public key of PrivateKeyHex.
	PublicKeyHex = "02c21cb8a373fb63ee91d6133edcd18aefd7fa804adb2a0a55b1cb2f6f8aef068d"

	CUOwner = "cosmwasm1j2mmggve9m6fpuahtzvwcrj3rud9cqjz9qva39cekgpk9vprae8s4haddx"
	CUHash  = "872be89dd82bcc6cf949d718f9274a624c927cfc91905f2bbb72fa44c9ea876d"

	// OwnerSeq decodes to the bytes 0x00..0x13.
	OwnerSeq = "outbe1qqqsyqcyq5rqwzqfpg9scrgwpugpzysng67f9q"
	// OwnerAB decodes to twenty 0xab bytes.
	OwnerAB = "outbe14w46h2at4w46h2at4w46h2at4w46h2athz4x9y"
)

// Address decodes a bech32 fixture address.
func Address(t testing.TB, s string) codec.Address {
	t.Helper()
	addr, err := codec.DecodeAddress(s)
	require.NoError(t, err)
	return addr
}

// ConsumptionUnit returns the consumption_unit record with token ID "1",
// tier 1 and a single hash.
func ConsumptionUnit(t testing.TB) record.Record {
	t.Helper()
	reg, err := schema.Builtin()
	require.NoError(t, err)
	s, err := reg.Lookup(schema.ConsumptionUnit)
	require.NoError(t, err)
	return record.New(s,
		record.F("token_id", record.String("1")),
		record.F("owner", record.String(CUOwner)),
		record.F("consumption_value", record.String("100")),
		record.F("nominal_quantity", record.String("100")),
		record.F("nominal_currency", record.String("usd")),
		record.F("commitment_tier", record.Int(1)),
		record.F("hashes", record.Strings(CUHash)),
	)
}
