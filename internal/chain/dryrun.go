package chain

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"hash"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/envelope"
)

// DryRunGateway records messages instead of broadcasting them. Each
// execution is written to w as one JSON line and gets a transaction hash
// derived from its content, so reruns produce the same hashes.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DryRunGateway struct {
	mu sync.Mutex
	w  io.Writer
}

// NewDryRunGateway writes executions to w.
func NewDryRunGateway(w io.Writer) *DryRunGateway {
	return &DryRunGateway{w: w}
}

// DryRunRecord is one line of dry-run output.
type DryRunRecord struct {
	RequestID string          `json:"request_id"`
	Sender    string          `json:"sender"`
	Messages  []DryRunMessage `json:"messages"`
	Fee       Fee             `json:"fee"`
	TxHash    string          `json:"tx_hash"`
}

type DryRunMessage struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
}

// Execute implements Gateway.
func (g *DryRunGateway) Execute(ctx context.Context, sender, contract string, msg []byte, fee Fee) (TxResult, error) {
	return g.ExecuteMultiple(ctx, sender, []envelope.Instruction{{Contract: contract, Msg: msg}}, fee)
}

// ExecuteMultiple implements Gateway.
func (g *DryRunGateway) ExecuteMultiple(ctx context.Context, sender string, instructions []envelope.Instruction, fee Fee) (TxResult, error) {
	if err := ctx.Err(); err != nil {
		return TxResult{}, err
	}

	h := sha256.New()
	rec := DryRunRecord{
		RequestID: uuid.NewString(),
		Sender:    sender,
		Fee:       fee,
	}
	for _, in := range instructions {
		if !json.Valid(in.Msg) {
			return TxResult{}, &InvalidMessageError{Contract: in.Contract}
		}
		writeTxPart(h, sender, in.Contract, in.Msg)
		rec.Messages = append(rec.Messages, DryRunMessage{Contract: in.Contract, Msg: in.Msg})
	}
	rec.TxHash = strings.ToUpper(codec.EncodeHex(h.Sum(nil)))

	line, err := envelope.Marshal(rec)
	if err != nil {
		return TxResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.w.Write(append(line, '\n')); err != nil {
		return TxResult{}, err
	}
	return TxResult{TxHash: rec.TxHash}, nil
}

// writeTxPart feeds sender || 0x00 || contract || 0x00 || msg into h.
func writeTxPart(h hash.Hash, sender, contract string, msg []byte) {
	h.Write([]byte(sender))
	h.Write([]byte{0})
	h.Write([]byte(contract))
	h.Write([]byte{0})
	h.Write(msg)
}

// InvalidMessageError is returned for an instruction whose message is not
// valid JSON.
type InvalidMessageError struct {
	Contract string
}

func (e *InvalidMessageError) Error() string {
	return "chain: message for " + e.Contract + " is not valid JSON"
}
