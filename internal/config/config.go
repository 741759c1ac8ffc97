// Package config loads the tributectl client configuration.
package config

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/outbe/tribute-attest/internal/attest"
	"github.com/outbe/tribute-attest/internal/chain"
	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/commitment"
)

// Defaults applied by Load.
const (
	DefaultPrivateKeyEnv   = "PRT_KEY"
	DefaultDenom           = "unit"
	DefaultAddressPrefix   = "outbe"
	DefaultFactoryContract = "tribute-factory"
	DefaultMinterContract  = "consumption-unit"
)

// Config is the client configuration file.
type Config struct {
	// Sender is the bech32 account that signs transactions.
	Sender string `yaml:"sender"`

	// AddressPrefix is the expected bech32 prefix of owners and sender.
	AddressPrefix string `yaml:"address_prefix,omitempty"`

	// Directory is the deployments YAML file. Relative paths resolve
	// against the config file's directory.
	Directory string `yaml:"directory"`

	// Ledger is the SQLite submission ledger path. Relative paths resolve
	// against the config file's directory.
	Ledger string `yaml:"ledger"`

	// CommitmentScheme selects the commitment ID derivation.
	CommitmentScheme commitment.Scheme `yaml:"commitment_scheme,omitempty"`

	// FactoryContract and MinterContract are directory names.
	FactoryContract string `yaml:"factory_contract,omitempty"`
	MinterContract  string `yaml:"minter_contract,omitempty"`

	// PrivateKeyEnv names the environment variable holding the hex
	// secp256k1 signing key. The key itself never appears in the file.
	PrivateKeyEnv string `yaml:"private_key_env,omitempty"`

	// LegacyRawKey enables the deprecated unsalted encryption mode for
	// deployments whose contract publishes no salt.
	LegacyRawKey bool `yaml:"legacy_raw_key,omitempty"`

	Fee chain.Fee `yaml:"fee"`
}

// Load reads, defaults and validates the config at path.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes, defaults and validates config YAML. Paths are left as
// written.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AddressPrefix == "" {
		c.AddressPrefix = DefaultAddressPrefix
	}
	if c.CommitmentScheme == "" {
		c.CommitmentScheme = commitment.DefaultScheme
	}
	if c.FactoryContract == "" {
		c.FactoryContract = DefaultFactoryContract
	}
	if c.MinterContract == "" {
		c.MinterContract = DefaultMinterContract
	}
	if c.PrivateKeyEnv == "" {
		c.PrivateKeyEnv = DefaultPrivateKeyEnv
	}
	if c.Fee.Denom == "" {
		c.Fee.Denom = DefaultDenom
	}
	if c.Fee.Amount == "" {
		c.Fee.Amount = "0"
	}
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Directory, &c.Ledger} {
		if *p != "" && !filepath.IsAbs(*p) && *p != ":memory:" {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks required fields and value formats.
func (c *Config) Validate() error {
	if c.Sender == "" {
		return fmt.Errorf("sender is required")
	}
	if _, err := codec.DecodeAddressWithPrefix(c.Sender, c.AddressPrefix); err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	if c.Directory == "" {
		return fmt.Errorf("directory is required")
	}
	if c.Ledger == "" {
		return fmt.Errorf("ledger is required")
	}
	if _, err := commitment.ParseScheme(string(c.CommitmentScheme)); err != nil {
		return fmt.Errorf("commitment_scheme: %w", err)
	}
	if v, ok := new(big.Int).SetString(c.Fee.Amount, 10); !ok || v.Sign() < 0 {
		return fmt.Errorf("fee.amount: %q is not a non-negative integer", c.Fee.Amount)
	}
	return nil
}

// PrivateKey reads the signing key from the configured environment
// variable.
func (c *Config) PrivateKey() (*attest.PrivateKey, error) {
	return PrivateKeyFromEnv(c.PrivateKeyEnv)
}

// PrivateKeyFromEnv reads a hex secp256k1 key from the environment
// variable name.
func PrivateKeyFromEnv(name string) (*attest.PrivateKey, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil, fmt.Errorf("environment variable %s is not set", name)
	}
	key, err := attest.ParsePrivateKeyHex(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return key, nil
}
