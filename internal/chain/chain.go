// Package chain defines the collaborators that sit between the client and
// the outbe network: a contract Directory and an execution Gateway.
package chain

import (
	"context"
	"errors"

	"github.com/outbe/tribute-attest/internal/envelope"
)

var (
	// ErrContractNotFound is returned when a directory has no contract
	// under the requested name.
	ErrContractNotFound = errors.New("chain: contract not found")
	// ErrNoEncryptionKey is returned when a contract publishes no
	// encryption public key.
	ErrNoEncryptionKey = errors.New("chain: contract has no encryption key")
)

// EncryptionInfo is the wire form of a contract's encryption material.
type EncryptionInfo struct {
	PublicKey string
	Salt      string
}

// Directory resolves contract names.
type Directory interface {
	Address(ctx context.Context, name string) (string, error)
	EncryptionInfo(ctx context.Context, name string) (EncryptionInfo, error)
}

// Fee is the transaction fee attached to an execution.
type Fee struct {
	Amount string `json:"amount" yaml:"amount"`
	Denom  string `json:"denom" yaml:"denom"`
	Gas    uint64 `json:"gas" yaml:"gas"`
}

// TxResult identifies a broadcast transaction.
type TxResult struct {
	TxHash string
}

// Gateway executes contract messages.
type Gateway interface {
	Execute(ctx context.Context, sender, contract string, msg []byte, fee Fee) (TxResult, error)
	ExecuteMultiple(ctx context.Context, sender string, instructions []envelope.Instruction, fee Fee) (TxResult, error)
}
