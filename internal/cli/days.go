package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/epoch"
)

// DaysResult is the output of the days command.
type DaysResult struct {
	Date string    `json:"date"`
	Day  epoch.Day `json:"day"`
}

func (r DaysResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s = day %d\n", r.Date, r.Day)
}

// NewDaysCommand creates the days command.
func NewDaysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "days <YYYY-MM-DD>",
		Short: "Convert a date to its logical day index",
		Long: `Convert a UTC calendar date to the number of whole days since
2025-01-01, the index the contracts use for worldwide days.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			day, err := epoch.IsoToDays(args[0])
			if err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(DaysResult{Date: args[0], Day: day})
		},
	}
}

// DraftIDOptions holds flags for the draft-id command.
type DraftIDOptions struct {
	*RootOptions
	Owner  string
	Day    string
	Scheme string
}

// DraftIDResult is the output of the draft-id command.
type DraftIDResult struct {
	Owner  string            `json:"owner"`
	Day    epoch.Day         `json:"day"`
	Scheme commitment.Scheme `json:"scheme"`
	Hex    string            `json:"hex"`
	Base58 string            `json:"base58"`
}

func (r DraftIDResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s\n", r.Hex)
	fmt.Fprintf(w, "  scheme: %s\n  owner:  %s\n  day:    %d\n  base58: %s\n", r.Scheme, r.Owner, r.Day, r.Base58)
}

// NewDraftIDCommand creates the draft-id command.
func NewDraftIDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DraftIDOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "draft-id",
		Short: "Derive a tribute commitment ID",
		Long: `Derive the commitment ID of the tribute owned by --owner on --day.
--day takes a YYYY-MM-DD date or a logical day index.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftID(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "bech32 owner address")
	cmd.Flags().StringVar(&opts.Day, "day", "", "date (YYYY-MM-DD) or logical day")
	cmd.Flags().StringVar(&opts.Scheme, "scheme", string(commitment.DefaultScheme), "commitment scheme")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("day")

	return cmd
}

func runDraftID(opts *DraftIDOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	owner, err := codec.DecodeAddress(opts.Owner)
	if err != nil {
		return formatter.Fail(err)
	}
	day, err := epoch.Parse(opts.Day)
	if err != nil {
		return formatter.Fail(err)
	}
	scheme, err := commitment.ParseScheme(opts.Scheme)
	if err != nil {
		return formatter.Fail(badInput("%v", err))
	}
	deriver, err := commitment.NewDeriver(scheme)
	if err != nil {
		return formatter.Fail(err)
	}
	id, err := deriver.Derive(owner, day)
	if err != nil {
		return formatter.Fail(err)
	}

	formatter.VerboseLog("derived %s for %s on day %d", id, owner.Display, day)
	return formatter.Success(DraftIDResult{
		Owner:  owner.Display,
		Day:    day,
		Scheme: scheme,
		Hex:    id.Hex(),
		Base58: id.Base58(),
	})
}
