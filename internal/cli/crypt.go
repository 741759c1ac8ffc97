package cli

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/envelope"
	"github.com/outbe/tribute-attest/internal/hybrid"
	"github.com/outbe/tribute-attest/internal/schema"
)

// DefaultRecipientKeyEnv holds the X25519 private key used by decrypt.
const DefaultRecipientKeyEnv = "TRIBUTE_RECIPIENT_KEY"

// EncryptOptions holds flags for the encrypt command.
type EncryptOptions struct {
	*RootOptions
	recordFlags
	PublicKey    string
	Salt         string
	Offer        bool
	LegacyRawKey bool
}

// EncryptResult is the output of the encrypt command.
type EncryptResult struct {
	Envelope hybrid.WireEnvelope `json:"envelope"`
	Offer    json.RawMessage     `json:"offer,omitempty"`
}

func (r EncryptResult) writeText(w io.Writer) {
	if len(r.Offer) > 0 {
		fmt.Fprintf(w, "%s\n", r.Offer)
		return
	}
	fmt.Fprintf(w, "cipher_text:      %s\nnonce:            %s\nephemeral_pubkey: %s\n",
		r.Envelope.CipherText, r.Envelope.Nonce, r.Envelope.EphemeralPubKey)
}

// NewEncryptCommand creates the encrypt command.
func NewEncryptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncryptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Seal a record to a contract's encryption key",
		Long: `Seal the canonical encoding of a record to an X25519 public key with
ChaCha20-Poly1305. With --offer the sealed tribute input is wrapped in the
factory offer message.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncrypt(opts, cmd)
		},
	}

	opts.register(cmd, schema.TributeInput)
	cmd.Flags().StringVar(&opts.PublicKey, "pubkey", "", "recipient X25519 public key (hex or base58)")
	cmd.Flags().StringVar(&opts.Salt, "salt", "", "recipient HKDF salt (base58 or 0x hex)")
	cmd.Flags().BoolVar(&opts.Offer, "offer", false, "print the offer message")
	cmd.Flags().BoolVar(&opts.LegacyRawKey, "legacy-raw-key", false, "use the raw shared secret as key (deprecated)")
	_ = cmd.MarkFlagRequired("pubkey")

	return cmd
}

func runEncrypt(opts *EncryptOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	rec, err := opts.load(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	recipient, err := hybrid.ParseRecipient(opts.PublicKey, opts.Salt)
	if err != nil {
		return formatter.Fail(err)
	}

	var sealOpts []hybrid.Option
	if opts.LegacyRawKey {
		opts.logger().Warn("sealing without HKDF salt", "mode", "legacy-raw-key")
		sealOpts = append(sealOpts, hybrid.WithLegacyRawKey())
	}
	env, err := hybrid.SealRecord(rec, recipient, sealOpts...)
	if err != nil {
		return formatter.Fail(err)
	}

	result := EncryptResult{Envelope: env.Wire()}
	if opts.Offer {
		payload, err := envelope.Marshal(envelope.Offer(result.Envelope, envelope.EmptyProof()))
		if err != nil {
			return formatter.Fail(err)
		}
		result.Offer = payload
	}
	return formatter.Success(result)
}

// DecryptOptions holds flags for the decrypt command.
type DecryptOptions struct {
	*RootOptions
	Envelope     string
	Salt         string
	KeyEnv       string
	LegacyRawKey bool
}

// DecryptResult is the output of the decrypt command.
type DecryptResult struct {
	Plaintext string `json:"plaintext"`
}

func (r DecryptResult) writeText(w io.Writer) {
	fmt.Fprintln(w, r.Plaintext)
}

// NewDecryptCommand creates the decrypt command.
func NewDecryptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecryptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Open a sealed envelope with a recipient key",
		Long: `Open a wire envelope ({"cipher_text","nonce","ephemeral_pubkey"}) with the
X25519 private key read from the environment. This is the receiving side
of encrypt, for round trips and enclave tooling.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecrypt(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Envelope, "envelope", "", "wire envelope JSON: a file path, - for stdin, or inline {...}")
	cmd.Flags().StringVar(&opts.Salt, "salt", "", "recipient HKDF salt (base58 or 0x hex)")
	cmd.Flags().StringVar(&opts.KeyEnv, "key-env", DefaultRecipientKeyEnv, "environment variable holding the X25519 private key")
	cmd.Flags().BoolVar(&opts.LegacyRawKey, "legacy-raw-key", false, "use the raw shared secret as key (deprecated)")
	_ = cmd.MarkFlagRequired("envelope")

	return cmd
}

func runDecrypt(opts *DecryptOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := readInput(cmd, opts.Envelope)
	if err != nil {
		return formatter.Fail(err)
	}
	var wire hybrid.WireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return formatter.Fail(badInput("envelope: %v", err))
	}
	env, err := hybrid.ParseWire(wire)
	if err != nil {
		return formatter.Fail(err)
	}
	salt, err := hybrid.ParseSalt(opts.Salt)
	if err != nil {
		return formatter.Fail(err)
	}

	v, ok := os.LookupEnv(opts.KeyEnv)
	if !ok || v == "" {
		return formatter.Fail(badInput("environment variable %s is not set", opts.KeyEnv))
	}
	raw, err := codec.DecodeKey(v, hybrid.KeySize)
	if err != nil {
		return formatter.Fail(err)
	}
	var key [hybrid.KeySize]byte
	copy(key[:], raw)
	defer clear(key[:])
	clear(raw)

	var openOpts []hybrid.Option
	if opts.LegacyRawKey {
		openOpts = append(openOpts, hybrid.WithLegacyRawKey())
	}
	plaintext, err := hybrid.Open(env, key, salt, openOpts...)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(DecryptResult{Plaintext: string(plaintext)})
}

// KeygenResult is the output of the keygen command. All fields are base58.
type KeygenResult struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
	Salt       string `json:"salt"`
}

func (r KeygenResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "private_key: %s\npublic_key:  %s\nsalt:        %s\n", r.PrivateKey, r.PublicKey, r.Salt)
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	var saltSize int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a recipient X25519 key pair and salt",
		Long: `Generate the encryption material a contract publishes: an X25519 key
pair and an HKDF salt, all base58. Keep the private key out of shell history.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if saltSize < hybrid.MinSaltSize || saltSize > hybrid.MaxSaltSize {
				return formatter.Fail(badInput("--salt-size must be %d to %d", hybrid.MinSaltSize, hybrid.MaxSaltSize))
			}
			kp, err := hybrid.GenerateKeyPair(nil)
			if err != nil {
				return formatter.Fail(err)
			}
			defer clear(kp.PrivateKey[:])
			salt := make([]byte, saltSize)
			if _, err := rand.Read(salt); err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(KeygenResult{
				PrivateKey: codec.EncodeBase58(kp.PrivateKey[:]),
				PublicKey:  codec.EncodeBase58(kp.PublicKey[:]),
				Salt:       codec.EncodeBase58(salt),
			})
		},
	}
	cmd.Flags().IntVar(&saltSize, "salt-size", hybrid.MaxSaltSize, "salt length in bytes")

	return cmd
}
