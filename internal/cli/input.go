package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outbe/tribute-attest/internal/record"
	"github.com/outbe/tribute-attest/internal/schema"
)

var (
	errBadInput      = errors.New("bad input")
	errUnknownSchema = errors.New("unknown schema")
)

func badInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadInput, fmt.Sprintf(format, args...))
}

// recordFlags are the flags of commands that take a record.
type recordFlags struct {
	Schema      string
	Record      string
	SchemaFiles []string
}

func (f *recordFlags) register(cmd *cobra.Command, defaultSchema string) {
	cmd.Flags().StringVar(&f.Schema, "schema", defaultSchema, "schema name")
	cmd.Flags().StringVar(&f.Record, "record", "", "record JSON: a file path, - for stdin, or inline {...}")
	cmd.Flags().StringSliceVar(&f.SchemaFiles, "schemas-file", nil, "extra CUE schema files")
	_ = cmd.MarkFlagRequired("record")
}

// registry returns the built-in schemas extended with --schemas-file.
func (f *recordFlags) registry() (*schema.Registry, error) {
	return loadRegistry(f.SchemaFiles)
}

func loadRegistry(files []string) (*schema.Registry, error) {
	reg, err := schema.Builtin()
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		if err := reg.LoadFile(path); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return reg, nil
}

// load binds the record input to the selected schema.
func (f *recordFlags) load(cmd *cobra.Command) (record.Record, error) {
	reg, err := f.registry()
	if err != nil {
		return record.Record{}, err
	}
	s, err := reg.Lookup(f.Schema)
	if err != nil {
		return record.Record{}, fmt.Errorf("%w: %v", errUnknownSchema, err)
	}
	data, err := readInput(cmd, f.Record)
	if err != nil {
		return record.Record{}, err
	}
	return record.Bind(s, data)
}

// readInput resolves a flag value that is a path, "-" or inline JSON.
func readInput(cmd *cobra.Command, v string) ([]byte, error) {
	switch {
	case v == "":
		return nil, badInput("empty input")
	case v == "-":
		return io.ReadAll(cmd.InOrStdin())
	case strings.HasPrefix(strings.TrimSpace(v), "{"):
		return []byte(v), nil
	}
	return os.ReadFile(v)
}
