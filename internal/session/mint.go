package session

import (
	"context"
	"fmt"

	"github.com/outbe/tribute-attest/internal/attest"
	"github.com/outbe/tribute-attest/internal/envelope"
	"github.com/outbe/tribute-attest/internal/record"
)

// MintResult is the outcome of MintUnit.
type MintResult struct {
	TokenID  string
	TxHash   string
	Envelope attest.SignatureEnvelope
}

// MintUnit signs rec and submits the mint message to the minter contract.
//
// The token ID is taken from tokenID, else from the record's token_id
// field, else generated. It is written into the record before signing so
// the entity and the message always agree.
func (s *Session) MintUnit(ctx context.Context, rec record.Record, tokenID string) (MintResult, error) {
	recorded, _ := rec.GetString("token_id")
	switch {
	case tokenID == "" && recorded != "":
		tokenID = recorded
	case tokenID == "":
		tokenID = s.tokens.Generate()
	case recorded != "" && recorded != tokenID:
		return MintResult{}, fmt.Errorf("mint: token id %q does not match record token_id %q", tokenID, recorded)
	}
	if _, ok := rec.Schema.Field("token_id"); ok {
		rec = rec.With("token_id", record.String(tokenID))
	}

	owner, ok := rec.GetString("owner")
	if !ok || owner == "" {
		return MintResult{}, fmt.Errorf("mint: record has no owner")
	}

	env, err := s.signer.Sign(rec)
	if err != nil {
		return MintResult{}, fmt.Errorf("mint: %w", err)
	}
	msg, err := envelope.Mint(tokenID, owner, env)
	if err != nil {
		return MintResult{}, fmt.Errorf("mint: %w", err)
	}
	payload, err := envelope.Marshal(msg)
	if err != nil {
		return MintResult{}, fmt.Errorf("mint: %w", err)
	}

	contract, err := s.directory.Address(ctx, s.minter)
	if err != nil {
		return MintResult{}, fmt.Errorf("mint: %w", err)
	}
	res, err := s.gateway.Execute(ctx, s.sender, contract, payload, s.fee)
	if err != nil {
		s.logger.Error("mint failed",
			"token_id", tokenID,
			"contract", s.minter,
			"error", err,
		)
		return MintResult{}, fmt.Errorf("mint: execute: %w", err)
	}

	s.logger.Info("unit minted",
		"token_id", tokenID,
		"contract", s.minter,
		"tx_hash", res.TxHash,
	)
	return MintResult{TokenID: tokenID, TxHash: res.TxHash, Envelope: env}, nil
}
