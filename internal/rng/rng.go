package rng

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Rand is a seeded PCG generator that can be forked into independent child
// streams without advancing its own sequence.
type Rand struct {
	*rand.Rand
	src *rand.PCG
}

func New(seed uint64) *Rand {
	return fromSeeds(seed, seed^0x9e3779b97f4a7c15)
}

func fromSeeds(s1, s2 uint64) *Rand {
	src := rand.NewPCG(s1, s2)
	return &Rand{Rand: rand.New(src), src: src}
}

// Fork derives a child generator from the current state of r and key. The
// parent's state is read, never advanced, so r produces the same values
// afterwards whether or not Fork was called. Distinct keys on the same state
// give distinct streams.
func (r *Rand) Fork(key uint64) *Rand {
	state, err := r.src.MarshalBinary()
	if err != nil {
		// PCG.MarshalBinary cannot fail.
		panic(err)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)

	d := xxhash.New()
	_, _ = d.Write(state)
	_, _ = d.Write(buf[:])
	s1 := d.Sum64()
	binary.LittleEndian.PutUint64(buf[:], s1)
	_, _ = d.Write(buf[:])
	s2 := d.Sum64()
	return fromSeeds(s1, s2)
}

// Range returns a uniform value in [low, high).
func (r *Rand) Range(low, high float64) float64 {
	if !(high > low) {
		panic("rng: Range requires high > low")
	}
	return low + r.Float64()*(high-low)
}
