package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outbe/tribute-attest/internal/attest"
	"github.com/outbe/tribute-attest/internal/chain"
	"github.com/outbe/tribute-attest/internal/codec"
	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/config"
	"github.com/outbe/tribute-attest/internal/envelope"
	"github.com/outbe/tribute-attest/internal/epoch"
	"github.com/outbe/tribute-attest/internal/hybrid"
	"github.com/outbe/tribute-attest/internal/store"
	"github.com/outbe/tribute-attest/internal/testutil"
)

const (
	factoryAddr = "outbe14w46h2at4w46h2at4w46h2at4w46h2athz4x9y"
	minterAddr  = "outbe1qqqsyqcyq5rqwzqfpg9scrgwpugpzysng67f9q"
)

var testSalt = bytes.Repeat([]byte{1}, 32)

type fixture struct {
	sess   *Session
	out    *bytes.Buffer
	logs   *bytes.Buffer
	ledger *store.Store
	tee    hybrid.KeyPair
}

func testConfig() *config.Config {
	return &config.Config{
		Sender:           testutil.OwnerAB,
		AddressPrefix:    config.DefaultAddressPrefix,
		CommitmentScheme: commitment.DefaultScheme,
		FactoryContract:  config.DefaultFactoryContract,
		MinterContract:   config.DefaultMinterContract,
		PrivateKeyEnv:    config.DefaultPrivateKeyEnv,
		Fee:              chain.Fee{Amount: "5000", Denom: "unit", Gas: 500000},
	}
}

func deploymentsYAML(tee hybrid.KeyPair) string {
	return fmt.Sprintf(`deployments:
  - commit_id: test
    is_latest: true
    contracts:
      - name: tribute-factory
        address: %s
        public_key: %s
        salt: %s
      - name: consumption-unit
        address: %s
`, factoryAddr, codec.EncodeHex(tee.PublicKey[:]), codec.EncodeBase58(testSalt), minterAddr)
}

func teeKeyPair(t *testing.T) hybrid.KeyPair {
	t.Helper()
	kp, err := hybrid.GenerateKeyPair(testutil.NewDeterministicReader("tee"))
	require.NoError(t, err)
	return kp
}

func newFixture(t *testing.T, gw chain.Gateway, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{out: &bytes.Buffer{}, logs: &bytes.Buffer{}, tee: teeKeyPair(t)}

	dir, err := chain.ParseDirectory([]byte(deploymentsYAML(f.tee)))
	require.NoError(t, err)

	f.ledger, err = store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { f.ledger.Close() })

	key, err := attest.ParsePrivateKeyHex(testutil.PrivateKeyHex)
	require.NoError(t, err)

	if gw == nil {
		gw = chain.NewDryRunGateway(f.out)
	}
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger)}, opts...)

	f.sess, err = New(testConfig(), key, dir, gw, f.ledger, opts...)
	require.NoError(t, err)
	return f
}

func testDraft(t *testing.T, day epoch.Day, hashes ...string) envelope.Draft {
	if len(hashes) == 0 {
		hashes = []string{testutil.CUHash}
	}
	return envelope.Draft{
		Owner:          testutil.Address(t, testutil.OwnerSeq),
		Day:            day,
		Currency:       "usd",
		SettlementBase: 250,
		NominalBase:    125,
		NominalAtto:    big.NewInt(500_000_000_000_000_000),
		CUHashes:       hashes,
	}
}

var errGatewayDown = errors.New("gateway down")

type failingGateway struct{}

func (failingGateway) Execute(context.Context, string, string, []byte, chain.Fee) (chain.TxResult, error) {
	return chain.TxResult{}, errGatewayDown
}

func (failingGateway) ExecuteMultiple(context.Context, string, []envelope.Instruction, chain.Fee) (chain.TxResult, error) {
	return chain.TxResult{}, errGatewayDown
}
