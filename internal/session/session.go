// Package session holds the client context for talking to the outbe
// contracts: signer, contract directory, gateway, ledger and commitment
// scheme. A Session is built once and passed explicitly; the signing,
// encoding and encryption packages never see it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/outbe/tribute-attest/internal/attest"
	"github.com/outbe/tribute-attest/internal/chain"
	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/config"
	"github.com/outbe/tribute-attest/internal/store"
)

// Ledger is the subset of the submission ledger a session needs.
type Ledger interface {
	Claim(ctx context.Context, sub store.Submission) (int64, error)
	MarkSubmitted(ctx context.Context, id commitment.ID, txHash string) error
	Release(ctx context.Context, id commitment.ID) error
}

// Session is the explicit client context.
//
// Thread-safety: a Session holds no mutable state of its own; it is as
// safe for concurrent use as its directory, gateway and ledger.
type Session struct {
	sender        string
	addressPrefix string
	signer        *attest.Signer
	directory     chain.Directory
	gateway       chain.Gateway
	ledger        Ledger
	deriver       commitment.Deriver
	factory       string
	minter        string
	fee           chain.Fee
	legacyRawKey  bool

	rand   io.Reader
	tokens TokenIDGenerator
	logger *slog.Logger

	closer io.Closer
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the entropy source for encryption. Tests only.
func WithRand(r io.Reader) Option {
	return func(s *Session) { s.rand = r }
}

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithTokenIDs replaces the UUIDv7 token ID generator.
func WithTokenIDs(g TokenIDGenerator) Option {
	return func(s *Session) { s.tokens = g }
}

// New builds a session from cfg and already constructed collaborators.
func New(cfg *config.Config, key *attest.PrivateKey, dir chain.Directory, gw chain.Gateway, ledger Ledger, opts ...Option) (*Session, error) {
	if cfg == nil || key == nil || dir == nil || gw == nil || ledger == nil {
		return nil, errors.New("session: config, key, directory, gateway and ledger are required")
	}
	deriver, err := commitment.NewDeriver(cfg.CommitmentScheme)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		sender:        cfg.Sender,
		addressPrefix: cfg.AddressPrefix,
		signer:        attest.NewSigner(key),
		directory:     dir,
		gateway:       gw,
		ledger:        ledger,
		deriver:       deriver,
		factory:       cfg.FactoryContract,
		minter:        cfg.MinterContract,
		fee:           cfg.Fee,
		legacyRawKey:  cfg.LegacyRawKey,
		tokens:        UUIDv7Generator{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.legacyRawKey {
		s.logger.Warn("legacy raw-key encryption enabled", "contract", s.factory)
	}
	return s, nil
}

// Open builds a session from cfg, loading the signing key from the
// environment, the directory file and the ledger. Close releases the
// ledger.
func Open(cfg *config.Config, gw chain.Gateway, opts ...Option) (*Session, error) {
	key, err := cfg.PrivateKey()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	dir, err := chain.LoadDirectory(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	ledger, err := store.Open(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s, err := New(cfg, key, dir, gw, ledger, opts...)
	if err != nil {
		ledger.Close()
		return nil, err
	}
	s.closer = ledger
	s.logger.Debug("session opened",
		"sender", cfg.Sender,
		"deployment", dir.CommitID(),
		"scheme", string(cfg.CommitmentScheme),
	)
	return s, nil
}

// Close releases resources opened by Open.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Deriver returns the session's commitment deriver.
func (s *Session) Deriver() commitment.Deriver {
	return s.deriver
}

// PublicKey returns the signer's compressed public key.
func (s *Session) PublicKey() [attest.PublicKeySize]byte {
	return s.signer.PublicKey()
}
