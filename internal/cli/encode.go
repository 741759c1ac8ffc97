package cli

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/record"
	"github.com/outbe/tribute-attest/internal/schema"
)

// EncodeResult is the output of the encode command.
type EncodeResult struct {
	Schema    string `json:"schema"`
	Canonical string `json:"canonical"`
	SHA256    string `json:"sha256"`
}

func (r EncodeResult) writeText(w io.Writer) {
	fmt.Fprintln(w, r.Canonical)
	fmt.Fprintf(w, "sha256: %s\n", r.SHA256)
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &recordFlags{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the canonical encoding of a record",
		Long: `Bind a JSON record to its schema and print the canonical bytes that
are signed and hashed, with their SHA-256 digest.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			rec, err := flags.load(cmd)
			if err != nil {
				return formatter.Fail(err)
			}
			canonical, err := record.Encode(rec)
			if err != nil {
				return formatter.Fail(err)
			}
			digest := sha256.Sum256(canonical)
			return formatter.Success(EncodeResult{
				Schema:    rec.Schema.Name,
				Canonical: string(canonical),
				SHA256:    codec.EncodeHex(digest[:]),
			})
		},
	}
	flags.register(cmd, schema.ConsumptionUnit)

	return cmd
}

// SchemaInfo describes one compiled schema.
type SchemaInfo struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// SchemasResult is the output of the schemas command.
type SchemasResult struct {
	Schemas []SchemaInfo `json:"schemas"`
}

func (r SchemasResult) writeText(w io.Writer) {
	for _, s := range r.Schemas {
		fmt.Fprintf(w, "%s: %s\n", s.Name, strings.Join(s.Fields, ", "))
	}
}

// NewSchemasCommand creates the schemas command.
func NewSchemasCommand(rootOpts *RootOptions) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:           "schemas",
		Short:         "List compiled schemas and their canonical field order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			reg, err := loadRegistry(files)
			if err != nil {
				return formatter.Fail(err)
			}
			result := SchemasResult{Schemas: []SchemaInfo{}}
			for _, name := range reg.Names() {
				s := reg.MustLookup(name)
				result.Schemas = append(result.Schemas, SchemaInfo{Name: name, Fields: s.FieldNames()})
			}
			return formatter.Success(result)
		},
	}
	cmd.Flags().StringSliceVar(&files, "schemas-file", nil, "extra CUE schema files")

	return cmd
}
