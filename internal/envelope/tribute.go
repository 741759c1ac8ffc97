package envelope

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/outbe/tribute-attest/internal/amount"
	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/epoch"
	"github.com/outbe/tribute-attest/internal/record"
	"github.com/outbe/tribute-attest/internal/schema"
)

// Draft is a tribute before its commitment ID is derived.
type Draft struct {
	Owner    codec.Address
	Day      epoch.Day
	Currency string

	SettlementBase uint64
	SettlementAtto *big.Int
	NominalBase    uint64
	NominalAtto    *big.Int

	// CUHashes are the hex SHA-256 hashes of the consumed units.
	CUHashes []string
}

// TributeInput derives the commitment ID of d and assembles the
// tribute_input record.
func TributeInput(d Draft, deriver commitment.Deriver) (record.Record, commitment.ID, error) {
	id, err := deriver.Derive(d.Owner, d.Day)
	if err != nil {
		return record.Record{}, commitment.ID{}, err
	}
	if _, err := amount.Normalize(d.SettlementBase, d.SettlementAtto); err != nil {
		return record.Record{}, commitment.ID{}, fmt.Errorf("settlement amount: %w", err)
	}
	if _, err := amount.Normalize(d.NominalBase, d.NominalAtto); err != nil {
		return record.Record{}, commitment.ID{}, fmt.Errorf("nominal quantity: %w", err)
	}
	if len(d.CUHashes) == 0 {
		return record.Record{}, commitment.ID{}, fmt.Errorf("tribute needs at least one consumption unit hash")
	}

	s, err := schema.MustBuiltin().Lookup(schema.TributeInput)
	if err != nil {
		return record.Record{}, commitment.ID{}, err
	}
	r := record.New(s,
		record.F("tribute_draft_id", record.String(id.Hex())),
		record.F("owner", record.String(d.Owner.Display)),
		record.F("worldwide_day", record.String(d.Day.ISO())),
		record.F("settlement_currency", record.String(strings.ToLower(d.Currency))),
		record.F("settlement_base_amount", record.String(fmt.Sprint(d.SettlementBase))),
		record.F("settlement_atto_amount", record.String(decimal(d.SettlementAtto))),
		record.F("nominal_base_qty", record.String(fmt.Sprint(d.NominalBase))),
		record.F("nominal_atto_qty", record.String(decimal(d.NominalAtto))),
		record.F("cu_hashes", record.Strings(d.CUHashes...)),
	)
	if err := r.Validate(); err != nil {
		return record.Record{}, commitment.ID{}, err
	}
	return r, id, nil
}

func decimal(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
