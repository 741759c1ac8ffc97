package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/outbe/tribute-attest/internal/attest"
	"github.com/outbe/tribute-attest/internal/config"
	"github.com/outbe/tribute-attest/internal/envelope"
	"github.com/outbe/tribute-attest/internal/record"
	"github.com/outbe/tribute-attest/internal/schema"
)

// SignOptions holds flags for the sign command.
type SignOptions struct {
	*RootOptions
	recordFlags
	KeyEnv  string
	Mint    bool
	TokenID string
}

// SignResult is the output of the sign command.
type SignResult struct {
	Schema    string          `json:"schema"`
	Signature string          `json:"signature"`
	PublicKey string          `json:"public_key"`
	Mint      json.RawMessage `json:"mint,omitempty"`
}

func (r SignResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "signature:  %s\npublic_key: %s\n", r.Signature, r.PublicKey)
	if len(r.Mint) > 0 {
		fmt.Fprintf(w, "mint:       %s\n", r.Mint)
	}
}

// NewSignCommand creates the sign command.
func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a record with the attestation key",
		Long: `Sign the canonical encoding of a record with the secp256k1 key read
from the environment. With --mint the signed consumption-unit mint message
is printed as well.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(opts, cmd)
		},
	}

	opts.register(cmd, schema.ConsumptionUnit)
	cmd.Flags().StringVar(&opts.KeyEnv, "key-env", config.DefaultPrivateKeyEnv, "environment variable holding the hex signing key")
	cmd.Flags().BoolVar(&opts.Mint, "mint", false, "also print the mint message")
	cmd.Flags().StringVar(&opts.TokenID, "token-id", "", "token ID written into the record before signing")

	return cmd
}

func runSign(opts *SignOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	rec, err := opts.load(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	if opts.TokenID != "" {
		if _, ok := rec.Schema.Field("token_id"); !ok {
			return formatter.Fail(badInput("schema %s has no token_id field", rec.Schema.Name))
		}
		rec = rec.With("token_id", record.String(opts.TokenID))
	}

	key, err := config.PrivateKeyFromEnv(opts.KeyEnv)
	if err != nil {
		return formatter.Fail(err)
	}
	defer key.Zero()

	env, err := attest.NewSigner(key).Sign(rec)
	if err != nil {
		return formatter.Fail(err)
	}
	result := SignResult{
		Schema:    rec.Schema.Name,
		Signature: env.SignatureHex(),
		PublicKey: env.PublicKeyHex(),
	}

	if opts.Mint {
		tokenID, _ := rec.GetString("token_id")
		owner, _ := rec.GetString("owner")
		if tokenID == "" || owner == "" {
			return formatter.Fail(badInput("--mint needs a record with token_id and owner"))
		}
		msg, err := envelope.Mint(tokenID, owner, env)
		if err != nil {
			return formatter.Fail(err)
		}
		payload, err := envelope.Marshal(msg)
		if err != nil {
			return formatter.Fail(err)
		}
		result.Mint = payload
	}

	formatter.VerboseLog("signed %s record", rec.Schema.Name)
	return formatter.Success(result)
}

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	recordFlags
	Signature string
	PublicKey string
}

// VerifyResult is the output of the verify command.
type VerifyResult struct {
	Valid bool `json:"valid"`
}

func (r VerifyResult) writeText(w io.Writer) {
	if r.Valid {
		fmt.Fprintln(w, "✓ signature valid")
		return
	}
	fmt.Fprintln(w, "✗ signature invalid")
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a record signature",
		Long: `Verify a hex compact signature over the canonical encoding of a record.
Exits 1 when the signature does not verify.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	opts.register(cmd, schema.ConsumptionUnit)
	cmd.Flags().StringVar(&opts.Signature, "signature", "", "hex compact signature (64 bytes)")
	cmd.Flags().StringVar(&opts.PublicKey, "pubkey", "", "hex compressed public key (33 bytes)")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("pubkey")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	rec, err := opts.load(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	valid, err := attest.VerifyHex(opts.Signature, rec, opts.PublicKey)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := formatter.Success(VerifyResult{Valid: valid}); err != nil {
		return err
	}
	if !valid {
		return WrapExitError(ExitFailure, ErrCodeInvalidSig, errSignatureInvalid)
	}
	return nil
}
