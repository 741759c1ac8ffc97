package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/envelope"
	"github.com/outbe/tribute-attest/internal/hybrid"
	"github.com/outbe/tribute-attest/internal/record"
	"github.com/outbe/tribute-attest/internal/store"
)

// OfferResult is the outcome of one offered tribute.
type OfferResult struct {
	CommitmentID commitment.ID
	Seq          int64
	TxHash       string
}

// prepared is a tribute ready to be claimed and executed.
type prepared struct {
	id       commitment.ID
	payload  []byte
	contract string
	sub      store.Submission
}

// OfferTribute derives the commitment ID of draft, claims it in the ledger,
// and submits the offer to the factory contract. Unless insecure is set,
// the tribute input is sealed to the factory's published key. A claim
// whose execution fails is released so it can be retried.
func (s *Session) OfferTribute(ctx context.Context, draft envelope.Draft, insecure bool) (OfferResult, error) {
	results, err := s.OfferTributes(ctx, []envelope.Draft{draft}, insecure)
	if err != nil {
		return OfferResult{}, err
	}
	return results[0], nil
}

// OfferTributes offers drafts in one batched transaction. Either every
// draft is claimed and submitted or none is.
func (s *Session) OfferTributes(ctx context.Context, drafts []envelope.Draft, insecure bool) ([]OfferResult, error) {
	if len(drafts) == 0 {
		return nil, errors.New("offer: no drafts")
	}

	contract, err := s.directory.Address(ctx, s.factory)
	if err != nil {
		return nil, fmt.Errorf("offer: %w", err)
	}
	var recipient hybrid.Recipient
	if !insecure {
		if recipient, err = s.recipient(ctx); err != nil {
			return nil, fmt.Errorf("offer: %w", err)
		}
	}

	batch := make([]prepared, 0, len(drafts))
	for _, d := range drafts {
		p, err := s.prepare(d, contract, recipient, insecure)
		if err != nil {
			return nil, fmt.Errorf("offer: %w", err)
		}
		batch = append(batch, p)
	}

	results := make([]OfferResult, 0, len(batch))
	for _, p := range batch {
		seq, err := s.ledger.Claim(ctx, p.sub)
		if err != nil {
			s.release(ctx, batch[:len(results)])
			s.logger.Warn("claim rejected",
				"commitment_id", p.id.String(),
				"error", err,
			)
			return nil, fmt.Errorf("offer: %w", err)
		}
		results = append(results, OfferResult{CommitmentID: p.id, Seq: seq})
	}

	instructions := make([]envelope.Instruction, len(batch))
	for i, p := range batch {
		instructions[i] = envelope.Instruction{Contract: p.contract, Msg: p.payload}
	}
	res, err := s.gateway.ExecuteMultiple(ctx, s.sender, instructions, s.fee)
	if err != nil {
		s.release(ctx, batch)
		s.logger.Error("offer failed",
			"contract", s.factory,
			"tributes", len(batch),
			"error", err,
		)
		return nil, fmt.Errorf("offer: execute: %w", err)
	}

	for i, p := range batch {
		results[i].TxHash = res.TxHash
		if err := s.ledger.MarkSubmitted(ctx, p.id, res.TxHash); err != nil {
			return nil, fmt.Errorf("offer: %w", err)
		}
		s.logger.Info("tribute offered",
			"commitment_id", p.id.String(),
			"contract", s.factory,
			"insecure", insecure,
			"tx_hash", res.TxHash,
		)
	}
	return results, nil
}

func (s *Session) recipient(ctx context.Context) (hybrid.Recipient, error) {
	info, err := s.directory.EncryptionInfo(ctx, s.factory)
	if err != nil {
		return hybrid.Recipient{}, err
	}
	return hybrid.ParseRecipient(info.PublicKey, info.Salt)
}

func (s *Session) prepare(d envelope.Draft, contract string, recipient hybrid.Recipient, insecure bool) (prepared, error) {
	if d.Owner.HRP != s.addressPrefix {
		return prepared{}, fmt.Errorf("owner %s: prefix %q, want %q", d.Owner, d.Owner.HRP, s.addressPrefix)
	}
	input, id, err := envelope.TributeInput(d, s.deriver)
	if err != nil {
		return prepared{}, err
	}
	digest, err := record.Hash(input)
	if err != nil {
		return prepared{}, err
	}

	var msg any
	if insecure {
		msg = envelope.OfferInsecure(input, envelope.EmptyProof(), d.Owner.Display)
	} else {
		sealed, err := hybrid.SealRecord(input, recipient, s.sealOptions()...)
		if err != nil {
			return prepared{}, err
		}
		msg = envelope.Offer(sealed.Wire(), envelope.EmptyProof())
	}
	payload, err := envelope.Marshal(msg)
	if err != nil {
		return prepared{}, err
	}

	s.logger.Debug("tribute prepared",
		"commitment_id", id.String(),
		"day", d.Day.ISO(),
		"cu_hashes", len(d.CUHashes),
	)
	return prepared{
		id:       id,
		payload:  payload,
		contract: contract,
		sub: store.Submission{
			CommitmentID: id,
			Owner:        d.Owner.Display,
			Day:          d.Day,
			Contract:     contract,
			PayloadHash:  codec.EncodeHex(digest[:]),
			CUHashes:     d.CUHashes,
		},
	}, nil
}

func (s *Session) sealOptions() []hybrid.Option {
	var opts []hybrid.Option
	if s.rand != nil {
		opts = append(opts, hybrid.WithRand(s.rand))
	}
	if s.legacyRawKey {
		opts = append(opts, hybrid.WithLegacyRawKey())
	}
	return opts
}

// release drops claims made for a batch that will not be submitted.
func (s *Session) release(ctx context.Context, batch []prepared) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range batch {
		if err := s.ledger.Release(ctx, p.id); err != nil {
			s.logger.Warn("release failed",
				"commitment_id", p.id.String(),
				"error", err,
			)
		}
	}
}
