package cli

import (
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/outbe/tribute-attest/internal/amount"
	"github.com/outbe/tribute-attest/internal/chain"
	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/config"
	"github.com/outbe/tribute-attest/internal/envelope"
	"github.com/outbe/tribute-attest/internal/epoch"
	"github.com/outbe/tribute-attest/internal/schema"
	"github.com/outbe/tribute-attest/internal/session"
)

// sessionFlags are shared by commands that run a full session.
type sessionFlags struct {
	Config string
	TxLog  string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Config, "config", "", "client config YAML")
	cmd.Flags().StringVar(&f.TxLog, "tx-log", "", "append dry-run transactions to this file (default stderr)")
	_ = cmd.MarkFlagRequired("config")
}

// open loads the config and opens a session over a dry-run gateway. The
// returned func closes the session and the transaction log.
func (f *sessionFlags) open(cmd *cobra.Command, rootOpts *RootOptions) (*session.Session, func(), error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return nil, nil, err
	}

	var txLog io.Writer = cmd.ErrOrStderr()
	var logFile *os.File
	if f.TxLog != "" {
		logFile, err = os.OpenFile(f.TxLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		txLog = logFile
	}

	sess, err := session.Open(cfg, chain.NewDryRunGateway(txLog), session.WithLogger(rootOpts.logger()))
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, nil, err
	}
	return sess, func() {
		sess.Close()
		if logFile != nil {
			logFile.Close()
		}
	}, nil
}

// OfferOptions holds flags for the offer command.
type OfferOptions struct {
	*RootOptions
	sessionFlags
	Owner          string
	Day            string
	Currency       string
	SettlementBase uint64
	SettlementAtto string
	NominalBase    uint64
	NominalAtto    string
	CUHashes       []string
	Insecure       bool
}

// OfferItem is one offered tribute.
type OfferItem struct {
	CommitmentID string `json:"commitment_id"`
	DraftID      string `json:"tribute_draft_id"`
	Seq          int64  `json:"seq"`
	TxHash       string `json:"tx_hash"`
}

func (r OfferItem) writeText(w io.Writer) {
	fmt.Fprintf(w, "✓ Offered tribute %s\n  seq:     %d\n  tx_hash: %s\n", r.DraftID, r.Seq, r.TxHash)
}

// NewOfferCommand creates the offer command.
func NewOfferCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OfferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Offer a tribute to the factory contract",
		Long: `Derive the tribute commitment ID, claim it and its consumption-unit hashes
in the local ledger, seal the tribute input to the factory's key and submit
the offer. Transactions go to a dry-run gateway that logs them as JSON lines.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOffer(opts, cmd)
		},
	}

	opts.sessionFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "bech32 tribute owner")
	cmd.Flags().StringVar(&opts.Day, "day", "", "date (YYYY-MM-DD) or logical day")
	cmd.Flags().StringVar(&opts.Currency, "currency", "", "settlement currency")
	cmd.Flags().Uint64Var(&opts.SettlementBase, "settlement-base", 0, "settlement amount, whole units")
	cmd.Flags().StringVar(&opts.SettlementAtto, "settlement-atto", "0", "settlement amount, fractional part in 1e-18 units")
	cmd.Flags().Uint64Var(&opts.NominalBase, "nominal-base", 0, "nominal quantity, whole units")
	cmd.Flags().StringVar(&opts.NominalAtto, "nominal-atto", "0", "nominal quantity, fractional part in 1e-18 units")
	cmd.Flags().StringSliceVar(&opts.CUHashes, "cu-hash", nil, "consumption unit hash (repeatable)")
	cmd.Flags().BoolVar(&opts.Insecure, "insecure", false, "send the tribute input in clear text")
	for _, name := range []string{"owner", "day", "currency", "cu-hash"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runOffer(opts *OfferOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	draft, err := opts.draft()
	if err != nil {
		return formatter.Fail(err)
	}

	sess, closeFn, err := opts.open(cmd, opts.RootOptions)
	if err != nil {
		return formatter.Fail(err)
	}
	defer closeFn()

	res, err := sess.OfferTribute(cmd.Context(), draft, opts.Insecure)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(OfferItem{
		CommitmentID: res.CommitmentID.String(),
		DraftID:      res.CommitmentID.Hex(),
		Seq:          res.Seq,
		TxHash:       res.TxHash,
	})
}

func (o *OfferOptions) draft() (envelope.Draft, error) {
	owner, err := codec.DecodeAddress(o.Owner)
	if err != nil {
		return envelope.Draft{}, err
	}
	day, err := epoch.Parse(o.Day)
	if err != nil {
		return envelope.Draft{}, err
	}
	settlementAtto, err := parseAtto("settlement-atto", o.SettlementAtto)
	if err != nil {
		return envelope.Draft{}, err
	}
	nominalAtto, err := parseAtto("nominal-atto", o.NominalAtto)
	if err != nil {
		return envelope.Draft{}, err
	}
	return envelope.Draft{
		Owner:          owner,
		Day:            day,
		Currency:       o.Currency,
		SettlementBase: o.SettlementBase,
		SettlementAtto: settlementAtto,
		NominalBase:    o.NominalBase,
		NominalAtto:    nominalAtto,
		CUHashes:       o.CUHashes,
	}, nil
}

func parseAtto(flag, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, badInput("--%s: %q is not a non-negative integer", flag, s)
	}
	if _, err := amount.Normalize(0, v); err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return v, nil
}

// MintOptions holds flags for the mint command.
type MintOptions struct {
	*RootOptions
	sessionFlags
	recordFlags
	TokenID string
}

// MintItem is the output of the mint command.
type MintItem struct {
	TokenID   string `json:"token_id"`
	TxHash    string `json:"tx_hash"`
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
}

func (r MintItem) writeText(w io.Writer) {
	fmt.Fprintf(w, "✓ Minted %s\n  tx_hash:   %s\n  signature: %s\n", r.TokenID, r.TxHash, r.Signature)
}

// NewMintCommand creates the mint command.
func NewMintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Sign a consumption unit and submit its mint message",
		Long: `Sign a consumption-unit record with the configured key and submit the
mint message to the minter contract through the dry-run gateway. Without
--token-id the record's token_id is used, else a UUIDv7 is generated.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMint(opts, cmd)
		},
	}

	opts.sessionFlags.register(cmd)
	opts.recordFlags.register(cmd, schema.ConsumptionUnit)
	cmd.Flags().StringVar(&opts.TokenID, "token-id", "", "token ID")

	return cmd
}

func runMint(opts *MintOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	rec, err := opts.load(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	sess, closeFn, err := opts.open(cmd, opts.RootOptions)
	if err != nil {
		return formatter.Fail(err)
	}
	defer closeFn()

	res, err := sess.MintUnit(cmd.Context(), rec, opts.TokenID)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(MintItem{
		TokenID:   res.TokenID,
		TxHash:    res.TxHash,
		Signature: res.Envelope.SignatureHex(),
		PublicKey: res.Envelope.PublicKeyHex(),
	})
}
