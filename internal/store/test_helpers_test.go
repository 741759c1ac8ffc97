package store

import (
	"path/filepath"
	"testing"

	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/epoch"
	"github.com/outbe/tribute-attest/internal/testutil"
)

// createTestStore creates a ledger in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testID derives the commitment ID of the fixture owner on day.
func testID(t *testing.T, day epoch.Day) commitment.ID {
	t.Helper()
	d, err := commitment.NewDeriver(commitment.DefaultScheme)
	if err != nil {
		t.Fatalf("NewDeriver() failed: %v", err)
	}
	id, err := d.Derive(testutil.Address(t, testutil.OwnerSeq), day)
	if err != nil {
		t.Fatalf("Derive() failed: %v", err)
	}
	return id
}

// createTestSubmission creates a submission with minimal required fields.
func createTestSubmission(t *testing.T, day epoch.Day, hashes ...string) Submission {
	return Submission{
		CommitmentID: testID(t, day),
		Owner:        testutil.OwnerSeq,
		Day:          day,
		Contract:     "outbe1factory",
		PayloadHash:  "00",
		CUHashes:     hashes,
	}
}

const (
	hashA = "872be89dd82bcc6cf949d718f9274a624c927cfc91905f2bbb72fa44c9ea876d"
	hashB = "a3f1c2e4b5d60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"
	hashC = "0b1c2d3e4f5061728394a5b6c7d8e9f00b1c2d3e4f5061728394a5b6c7d8e9f0"
)
