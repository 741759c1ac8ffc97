package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/epoch"
)

var (
	// ErrDuplicateCommitment is returned when a commitment ID was already
	// claimed.
	ErrDuplicateCommitment = errors.New("store: commitment id already claimed")
	// ErrDuplicateCUHash is returned when a consumption unit hash was
	// already claimed, by this or an earlier submission.
	ErrDuplicateCUHash = errors.New("store: consumption unit hash already claimed")
	// ErrNotFound is returned for an unknown commitment ID.
	ErrNotFound = errors.New("store: submission not found")
)

// Status is the lifecycle state of a submission.
type Status string

const (
	StatusClaimed   Status = "claimed"
	StatusSubmitted Status = "submitted"
)

// Submission is one claimed tribute.
type Submission struct {
	// Seq is assigned by Claim.
	Seq          int64
	CommitmentID commitment.ID
	Owner        string
	Day          epoch.Day
	Contract     string
	// PayloadHash is the hex SHA-256 of the canonical tribute input.
	PayloadHash string
	CUHashes    []string
	Status      Status
	TxHash      string
}

// Claim records sub and its CU hashes in one transaction and returns the
// assigned sequence number. On any conflict nothing is written.
func (s *Store) Claim(ctx context.Context, sub Submission) (int64, error) {
	if sub.CommitmentID.IsZero() {
		return 0, errors.New("claim: commitment id is required")
	}
	hashes, err := normalizeHashes(sub.CUHashes)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("claim: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO submissions
		(commitment_id, owner, day, contract, payload_hash, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		sub.CommitmentID.String(),
		sub.Owner,
		int64(sub.Day),
		sub.Contract,
		sub.PayloadHash,
		string(StatusClaimed),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateCommitment, sub.CommitmentID)
		}
		return 0, fmt.Errorf("claim: insert submission: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("claim: last insert id: %w", err)
	}

	for _, h := range hashes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cu_hashes (hash, submission_seq) VALUES (?, ?)
		`, h, seq)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, fmt.Errorf("%w: %s", ErrDuplicateCUHash, h)
			}
			return 0, fmt.Errorf("claim: insert cu hash: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("claim: commit: %w", err)
	}
	return seq, nil
}

// normalizeHashes lowercases hashes and rejects repeats within one claim.
func normalizeHashes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, h := range in {
		h = strings.ToLower(strings.TrimPrefix(h, "0x"))
		if seen[h] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrDuplicateCUHash, h)
		}
		seen[h] = true
		out = append(out, h)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	return sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// MarkSubmitted records the transaction hash of a claimed submission.
func (s *Store) MarkSubmitted(ctx context.Context, id commitment.ID, txHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET status = ?, tx_hash = ?
		WHERE commitment_id = ?
	`, string(StatusSubmitted), txHash, id.String())
	if err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Release drops a claim that was never submitted, freeing its commitment
// ID and CU hashes for a retry. Submitted rows are kept.
func (s *Store) Release(ctx context.Context, id commitment.ID) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM submissions WHERE commitment_id = ? AND status = ?
	`, id.String(), string(StatusClaimed))
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no open claim for %s", ErrNotFound, id)
	}
	return nil
}
