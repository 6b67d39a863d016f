// Package sampler implements weighted discrete sampling over a small set of
// outcomes, used by the draw engine to pick a coupon type (or the residual
// "no coupon" outcome) according to a campaign's configured probabilities.
package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// rng is seeded once from OS entropy at process start. The sampling sequence
// is never replayed or required to be reproducible, so a single shared
// source (guarded by a mutex, since *rand.Rand is not safe for concurrent
// use) is sufficient.
var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewPCG(seedWord(), seedWord()))
)

func seedWord() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Errorf("sampler: read entropy: %w", err))
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Weighted samples a single index from weights according to their relative
// size. Weights must be non-negative and sum to a positive value; a weight
// of exactly zero is never selected. Sampling is prefix-sum plus a single
// draw from [0, total).
func Weighted(weights []float32) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("sampler: no weights given")
	}

	prefix := make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("sampler: negative weight at index %d", i)
		}
		total += float64(w)
		prefix[i] = total
	}
	if total <= 0 {
		return 0, fmt.Errorf("sampler: weights sum to zero")
	}

	rngMu.Lock()
	point := rng.Float64() * total
	rngMu.Unlock()

	lo, hi := 0, len(prefix)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if prefix[mid] <= point {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}
