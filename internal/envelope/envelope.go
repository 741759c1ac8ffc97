// Package envelope builds the JSON execute messages sent to the outbe
// contracts. Builders are pure; record-valued fields are embedded as their
// canonical bytes so the contract hashes exactly what was signed.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/outbe/tribute-attest/internal/attest"
	"github.com/outbe/tribute-attest/internal/hybrid"
	"github.com/outbe/tribute-attest/internal/record"
)

// ErrNotAttestable is returned by Mint for an envelope whose signature does
// not verify.
var ErrNotAttestable = errors.New("envelope: signature envelope is not attestable")

// ZkProof is passed through to the contract untouched. Empty strings are
// valid placeholders.
type ZkProof struct {
	Proof           string            `json:"proof"`
	PublicData      ZkProofPublicData `json:"public_data"`
	VerificationKey string            `json:"verification_key"`
}

// ZkProofPublicData is the public input of a proof.
type ZkProofPublicData struct {
	PublicKey  string `json:"public_key"`
	MerkleRoot string `json:"merkle_root"`
}

// EmptyProof returns the placeholder proof accepted while proofs are not
// enforced.
func EmptyProof() ZkProof {
	return ZkProof{}
}

// MintMsg is {"mint": {...}}.
type MintMsg struct {
	Mint MintBody `json:"mint"`
}

// MintBody is the body of a mint message.
type MintBody struct {
	TokenID   string        `json:"token_id"`
	Owner     string        `json:"owner"`
	Extension MintExtension `json:"extension"`
}

// MintExtension carries the signed entity and its attestation.
type MintExtension struct {
	Entity    record.Record `json:"entity"`
	Signature string        `json:"signature"`
	PublicKey string        `json:"public_key"`
}

// Mint builds the signed mint message for env.
func Mint(tokenID, owner string, env attest.SignatureEnvelope) (MintMsg, error) {
	if !env.Attestable() {
		return MintMsg{}, ErrNotAttestable
	}
	return MintMsg{Mint: MintBody{
		TokenID: tokenID,
		Owner:   owner,
		Extension: MintExtension{
			Entity:    env.Entity,
			Signature: env.SignatureHex(),
			PublicKey: env.PublicKeyHex(),
		},
	}}, nil
}

// OfferMsg is {"offer": {...}}.
type OfferMsg struct {
	Offer OfferBody `json:"offer"`
}

// OfferBody is a sealed tribute input with its proof.
type OfferBody struct {
	hybrid.WireEnvelope
	ZkProof ZkProof `json:"zk_proof"`
}

// Offer builds the confidential offer for a sealed tribute input.
func Offer(wire hybrid.WireEnvelope, proof ZkProof) OfferMsg {
	return OfferMsg{Offer: OfferBody{WireEnvelope: wire, ZkProof: proof}}
}

// OfferInsecureMsg is {"offer_insecure": {...}}.
type OfferInsecureMsg struct {
	OfferInsecure OfferInsecureBody `json:"offer_insecure"`
}

// OfferInsecureBody is a plaintext tribute input with its proof.
type OfferInsecureBody struct {
	TributeInput   record.Record `json:"tribute_input"`
	ZkProof        ZkProof       `json:"zk_proof"`
	TributeOwnerL1 string        `json:"tribute_owner_l1,omitempty"`
}

// OfferInsecure builds the plaintext offer. Debug deployments only: the
// tribute input is readable by anyone watching the chain.
func OfferInsecure(input record.Record, proof ZkProof, ownerL1 string) OfferInsecureMsg {
	return OfferInsecureMsg{OfferInsecure: OfferInsecureBody{
		TributeInput:   input,
		ZkProof:        proof,
		TributeOwnerL1: ownerL1,
	}}
}

// Instruction is one message of a batched execution.
type Instruction struct {
	Contract string
	Msg      []byte
}

// Marshal encodes msg as compact JSON without HTML escaping and without a
// trailing newline.
func Marshal(msg any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
