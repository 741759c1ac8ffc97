// Package protoerr defines the error taxonomy shared by the attestation,
// commitment and encryption packages.
//
// Every category is its own type so callers can branch with errors.As (or the
// Is* helpers) without string matching:
//   - InvalidKeyError: malformed or out-of-range private/public key material
//   - EncodingError: a record cannot be canonically serialized
//   - DateError: malformed or out-of-epoch-range date string
//   - DecodingError: malformed hex, base58 or bech32 input
//   - DecryptionError: an envelope failed AEAD authentication
//
// Signature mismatches are not errors; verifiers report them as false.
package protoerr

import (
	"errors"
	"fmt"
)

// Date error messages. Callers and tests compare against these exact strings.
const (
	MsgInvalidDateFormat = "Invalid date format"
	MsgInvalidDate       = "Invalid date"
	MsgDateBeforeEpoch   = "Date before EPOCH"
	MsgDayOutOfRange     = "Day out of range"
)

// InvalidKeyError reports malformed or out-of-range key material.
type InvalidKeyError struct {
	Op      string
	Message string
	Err     error
}

func (e *InvalidKeyError) Error() string { return format("invalid key", e.Op, e.Message, e.Err) }
func (e *InvalidKeyError) Unwrap() error { return e.Err }

// EncodingError reports a record that cannot be canonically serialized.
type EncodingError struct {
	Op string
	// Path locates the offending value, e.g. "hashes[2]".
	Path    string
	Message string
	Err     error
}

func (e *EncodingError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return format("encoding", e.Op, msg, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DateError reports a malformed date or one outside the epoch range.
// Message is one of the Msg* constants.
type DateError struct {
	Input   string
	Message string
}

func (e *DateError) Error() string {
	if e.Input == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %q", e.Message, e.Input)
}

// DecodingError reports malformed hex, base58 or bech32 input.
type DecodingError struct {
	// Encoding is "hex", "base58" or "bech32".
	Encoding string
	Message  string
	Err      error
}

func (e *DecodingError) Error() string {
	return format("decoding", e.Encoding, e.Message, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// DecryptionError reports an envelope that could not be opened.
type DecryptionError struct {
	Message string
	Err     error
}

func (e *DecryptionError) Error() string { return format("decryption", "", e.Message, e.Err) }
func (e *DecryptionError) Unwrap() error { return e.Err }

func format(kind, op, msg string, err error) string {
	s := kind
	if op != "" {
		s += " (" + op + ")"
	}
	if msg != "" {
		s += ": " + msg
	}
	if err != nil {
		s += ": " + err.Error()
	}
	return s
}

// InvalidKey creates an InvalidKeyError.
func InvalidKey(op, format string, args ...any) *InvalidKeyError {
	return &InvalidKeyError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// Encoding creates an EncodingError for the value at path.
func Encoding(path, format string, args ...any) *EncodingError {
	return &EncodingError{Op: "encode", Path: path, Message: fmt.Sprintf(format, args...)}
}

// Decoding creates a DecodingError wrapping err.
func Decoding(encoding, msg string, err error) *DecodingError {
	return &DecodingError{Encoding: encoding, Message: msg, Err: err}
}

// Date creates a DateError for input.
func Date(msg, input string) *DateError {
	return &DateError{Input: input, Message: msg}
}

// IsInvalidKeyError returns true if err is or wraps an InvalidKeyError.
func IsInvalidKeyError(err error) bool {
	var e *InvalidKeyError
	return errors.As(err, &e)
}

// IsEncodingError returns true if err is or wraps an EncodingError.
func IsEncodingError(err error) bool {
	var e *EncodingError
	return errors.As(err, &e)
}

// IsDateError returns true if err is or wraps a DateError.
func IsDateError(err error) bool {
	var e *DateError
	return errors.As(err, &e)
}

// IsDecodingError returns true if err is or wraps a DecodingError.
func IsDecodingError(err error) bool {
	var e *DecodingError
	return errors.As(err, &e)
}

// IsDecryptionError returns true if err is or wraps a DecryptionError.
func IsDecryptionError(err error) bool {
	var e *DecryptionError
	return errors.As(err, &e)
}
