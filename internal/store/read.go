package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/epoch"
)

// HasCommitment reports whether id has been claimed.
func (s *Store) HasCommitment(ctx context.Context, id commitment.ID) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM submissions WHERE commitment_id = ?`, id.String(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has commitment: %w", err)
	}
	return true, nil
}

// HasCUHash reports whether a consumption unit hash has been claimed.
func (s *Store) HasCUHash(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM cu_hashes WHERE hash = ?`, strings.ToLower(strings.TrimPrefix(hash, "0x")),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has cu hash: %w", err)
	}
	return true, nil
}

// ReadSubmission returns the submission for id.
func (s *Store) ReadSubmission(ctx context.Context, id commitment.ID) (Submission, error) {
	subs, err := s.readSubmissions(ctx, `WHERE commitment_id = ?`, id.String())
	if err != nil {
		return Submission{}, err
	}
	if len(subs) == 0 {
		return Submission{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return subs[0], nil
}

// ReadSubmissions returns every submission ordered by seq.
func (s *Store) ReadSubmissions(ctx context.Context) ([]Submission, error) {
	return s.readSubmissions(ctx, "")
}

func (s *Store) readSubmissions(ctx context.Context, where string, args ...any) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, commitment_id, owner, day, contract, payload_hash, status, tx_hash
		FROM submissions `+where+`
		ORDER BY seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var (
			sub    Submission
			id     string
			day    int64
			status string
			txHash sql.NullString
		)
		if err := rows.Scan(&sub.Seq, &id, &sub.Owner, &day, &sub.Contract, &sub.PayloadHash, &status, &txHash); err != nil {
			return nil, fmt.Errorf("read submissions: scan: %w", err)
		}
		if sub.CommitmentID, err = commitment.ParseID(id); err != nil {
			return nil, fmt.Errorf("read submissions: seq %d: %w", sub.Seq, err)
		}
		sub.Day = epoch.Day(day)
		sub.Status = Status(status)
		sub.TxHash = txHash.String
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	// Release the single connection before the per-row queries.
	rows.Close()

	for i := range subs {
		if subs[i].CUHashes, err = s.readCUHashes(ctx, subs[i].Seq); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func (s *Store) readCUHashes(ctx context.Context, seq int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash FROM cu_hashes WHERE submission_seq = ?
		ORDER BY rowid ASC
	`, seq)
	if err != nil {
		return nil, fmt.Errorf("read cu hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("read cu hashes: scan: %w", err)
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
