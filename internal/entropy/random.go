// Package entropy provides the random source used for target selection and
// patrol destinations. Seeded sources replay exactly; the crypto source does not.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// Source yields uniform random numbers.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// Seeded wraps math/rand with a mutex so one source can be shared by the
// simulation and the API goroutines.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a deterministic source.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Crypto draws from crypto/rand.
type Crypto struct{}

func (Crypto) Float64() float64 {
	return cryptoRandFloat()
}

func (Crypto) Intn(n int) int {
	if n <= 0 {
		panic("entropy: Intn with non-positive n")
	}
	i := int(cryptoRandFloat() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// New returns a seeded source, or the crypto source when seed is 0.
func New(seed int64) Source {
	if seed == 0 {
		return Crypto{}
	}
	return NewSeeded(seed)
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Pick returns a uniformly random element of items, or false if empty.
func Pick[T any](src Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[src.Intn(len(items))], true
}
