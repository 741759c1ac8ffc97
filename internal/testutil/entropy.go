package testutil

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"sync"
)

// DeterministicReader is a reproducible entropy source for tests.
//
// Block i of the stream is SHA256(seed || be64(i)). Two readers built from
// the same seed produce the same bytes, so ephemeral keys and nonces drawn
// from them are stable across runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicReader struct {
	mu      sync.Mutex
	seed    []byte
	counter uint64
	buf     []byte
}

// NewDeterministicReader creates a reader seeded with seed.
func NewDeterministicReader(seed string) *DeterministicReader {
	return &DeterministicReader{seed: []byte(seed)}
}

// Read fills p from the stream. It never fails.
func (r *DeterministicReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for n < len(p) {
		if len(r.buf) == 0 {
			r.buf = r.block()
		}
		c := copy(p[n:], r.buf)
		r.buf = r.buf[c:]
		n += c
	}
	return n, nil
}

// Reset rewinds the stream to its first byte.
func (r *DeterministicReader) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter = 0
	r.buf = nil
}

func (r *DeterministicReader) block() []byte {
	h := sha256.New()
	h.Write(r.seed)
	h.Write(binary.BigEndian.AppendUint64(nil, r.counter))
	r.counter++
	return h.Sum(nil)
}

// ErrEntropy is returned by FailingReader.
var ErrEntropy = errors.New("testutil: entropy source exhausted")

// FailingReader serves Budget bytes and then fails with ErrEntropy.
// The zero value fails on the first read.
type FailingReader struct {
	mu     sync.Mutex
	Budget int
}

func (r *FailingReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Budget <= 0 {
		return 0, ErrEntropy
	}
	n := min(len(p), r.Budget)
	for i := range p[:n] {
		p[i] = 0x5a
	}
	r.Budget -= n
	return n, nil
}
