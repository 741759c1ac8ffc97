package cli

import (
	"errors"
	"io/fs"

	"github.com/outbe/tribute-attest/internal/amount"
	"github.com/outbe/tribute-attest/internal/chain"
	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/protoerr"
	"github.com/outbe/tribute-attest/internal/schema"
	"github.com/outbe/tribute-attest/internal/store"
)

// Error codes shared by all commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeBadInput     = "E002" // Malformed flag or record JSON
	ErrCodeNotFound     = "E003" // File not found
	ErrCodeInvalidKey   = "E004" // Key, salt or public key rejected
	ErrCodeEncoding     = "E005" // Record does not fit its schema
	ErrCodeDate         = "E006" // Bad or pre-epoch date
	ErrCodeDecoding     = "E007" // Hex, base58 or bech32 decoding failed
	ErrCodeDecryption   = "E008" // Envelope failed authentication
	ErrCodeSchema       = "E009" // Schema compile or lookup failure
	ErrCodeInvalidSig   = "E010" // Signature did not verify
	ErrCodeDuplicate    = "E011" // Commitment or CU hash already claimed
	ErrCodeContract     = "E012" // Contract missing from the directory
	ErrCodeWriteFailed  = "E013" // Output file write error
	ErrCodeInvalidValue = "E014" // Amount out of range
)

// errSignatureInvalid is returned by verify when the signature does not
// match.
var errSignatureInvalid = errors.New("signature does not verify")

// classify maps err to an error code and exit code.
func classify(err error) (string, int) {
	var compileErr *schema.CompileError
	switch {
	case errors.Is(err, errSignatureInvalid):
		return ErrCodeInvalidSig, ExitFailure
	case errors.Is(err, store.ErrDuplicateCommitment), errors.Is(err, store.ErrDuplicateCUHash):
		return ErrCodeDuplicate, ExitFailure
	case errors.Is(err, chain.ErrContractNotFound), errors.Is(err, chain.ErrNoEncryptionKey):
		return ErrCodeContract, ExitCommandError
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	case protoerr.IsDecryptionError(err):
		return ErrCodeDecryption, ExitFailure
	case protoerr.IsInvalidKeyError(err):
		return ErrCodeInvalidKey, ExitCommandError
	case protoerr.IsDateError(err):
		return ErrCodeDate, ExitCommandError
	case protoerr.IsEncodingError(err):
		return ErrCodeEncoding, ExitCommandError
	case protoerr.IsDecodingError(err), errors.Is(err, commitment.ErrEmptyOwner):
		return ErrCodeDecoding, ExitCommandError
	case errors.Is(err, amount.ErrWrongAtto):
		return ErrCodeInvalidValue, ExitCommandError
	case errors.As(err, &compileErr), errors.Is(err, errUnknownSchema):
		return ErrCodeSchema, ExitCommandError
	case errors.Is(err, errBadInput):
		return ErrCodeBadInput, ExitCommandError
	}
	return ErrCodeGeneric, ExitCommandError
}
