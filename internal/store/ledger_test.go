package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outbe/tribute-attest/internal/commitment"
	"github.com/outbe/tribute-attest/internal/epoch"
)

func TestClaim(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sub := createTestSubmission(t, 196, hashA, hashB)
	seq, err := s.Claim(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	ok, err := s.HasCommitment(ctx, sub.CommitmentID)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, h := range []string{hashA, hashB} {
		ok, err := s.HasCUHash(ctx, h)
		require.NoError(t, err)
		assert.True(t, ok, h)
	}

	got, err := s.ReadSubmission(ctx, sub.CommitmentID)
	require.NoError(t, err)
	assert.True(t, sub.CommitmentID.Equal(got.CommitmentID))
	assert.Equal(t, StatusClaimed, got.Status)
	assert.Equal(t, []string{hashA, hashB}, got.CUHashes)
	assert.Empty(t, got.TxHash)
}

func TestClaim_DuplicateCommitment(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Claim(ctx, createTestSubmission(t, 1, hashA))
	require.NoError(t, err)

	_, err = s.Claim(ctx, createTestSubmission(t, 1, hashB))
	assert.ErrorIs(t, err, ErrDuplicateCommitment)

	// hashB must not have been written by the failed claim.
	ok, err := s.HasCUHash(ctx, hashB)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaim_DuplicateCUHashIsAtomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Claim(ctx, createTestSubmission(t, 1, hashA))
	require.NoError(t, err)

	second := createTestSubmission(t, 2, hashB, hashA)
	_, err = s.Claim(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateCUHash)

	ok, err := s.HasCommitment(ctx, second.CommitmentID)
	require.NoError(t, err)
	assert.False(t, ok, "conflicting claim must leave no submission row")

	ok, err = s.HasCUHash(ctx, hashB)
	require.NoError(t, err)
	assert.False(t, ok, "conflicting claim must leave no cu hash rows")
}

func TestClaim_RepeatedHashInOneClaim(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Claim(context.Background(), createTestSubmission(t, 1, hashA, "0x"+hashA))
	assert.ErrorIs(t, err, ErrDuplicateCUHash)
}

func TestClaim_RequiresID(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Claim(context.Background(), Submission{CUHashes: []string{hashA}})
	assert.Error(t, err)
}

func TestClaim_SchemesAreDistinct(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sub := createTestSubmission(t, 5, hashA)
	_, err := s.Claim(ctx, sub)
	require.NoError(t, err)

	other := sub
	other.CommitmentID = commitment.ID{Scheme: commitment.SchemeBLAKE3Tagged, Digest: sub.CommitmentID.Digest}
	other.CUHashes = []string{hashB}
	_, err = s.Claim(ctx, other)
	assert.NoError(t, err)
}

func TestMarkSubmitted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sub := createTestSubmission(t, 3, hashA)
	_, err := s.Claim(ctx, sub)
	require.NoError(t, err)

	require.NoError(t, s.MarkSubmitted(ctx, sub.CommitmentID, "ABCDEF"))
	got, err := s.ReadSubmission(ctx, sub.CommitmentID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status)
	assert.Equal(t, "ABCDEF", got.TxHash)

	err = s.MarkSubmitted(ctx, testID(t, 99), "X")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelease(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sub := createTestSubmission(t, 4, hashA)
	_, err := s.Claim(ctx, sub)
	require.NoError(t, err)

	require.NoError(t, s.Release(ctx, sub.CommitmentID))
	ok, err := s.HasCUHash(ctx, hashA)
	require.NoError(t, err)
	assert.False(t, ok, "release cascades to cu hashes")

	_, err = s.Claim(ctx, sub)
	require.NoError(t, err, "released claim can be retried")

	require.NoError(t, s.MarkSubmitted(ctx, sub.CommitmentID, "TX"))
	assert.ErrorIs(t, s.Release(ctx, sub.CommitmentID), ErrNotFound, "submitted rows are kept")
}

func TestReadSubmissions_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, h := range []string{hashC, hashA, hashB} {
		_, err := s.Claim(ctx, createTestSubmission(t, epoch.Day(10-i), h))
		require.NoError(t, err)
	}

	subs, err := s.ReadSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for i, sub := range subs {
		assert.Equal(t, int64(i+1), sub.Seq)
	}
	assert.Equal(t, []string{hashC}, subs[0].CUHashes)
	assert.Equal(t, []string{hashB}, subs[2].CUHashes)
}

func TestReadSubmission_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadSubmission(context.Background(), testID(t, 0))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasCUHash_NormalizesCase(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.Claim(ctx, createTestSubmission(t, 1, hashA))
	require.NoError(t, err)

	ok, err := s.HasCUHash(ctx, "0x872BE89DD82BCC6CF949D718F9274A624C927CFC91905F2BBB72FA44C9EA876D")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClaim_ConcurrentSameCommitment(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sub := createTestSubmission(t, 7, hashA)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Claim(ctx, sub); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, success)
}
