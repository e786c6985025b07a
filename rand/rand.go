package rand

import (
	"time"

	"seehuhn.de/go/mt19937"
)

// Rand is a seedable, repeatable source of random numbers over a Mersenne
// Twister. Games use it for deterministic replay: equal seeds produce equal
// sequences.
type Rand struct {
	twister *mt19937.MT19937
}

// New creates a source seeded from the current time
func New() *Rand {
	r := &Rand{twister: mt19937.New()}
	r.twister.Seed(time.Now().Unix())
	return r
}

// SetSeed reseeds the source
func (r *Rand) SetSeed(seed int64) {
	r.twister.Seed(seed)
}

// NextU32 returns the next 32-bit unsigned integer
func (r *Rand) NextU32() uint32 {
	return uint32(r.twister.Uint64())
}

// NextInt returns an unsigned integer in [0, n); zero n yields zero
func (r *Rand) NextInt(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return r.NextU32() % n
}

// NextIntSigned returns a signed integer in [-n, n]; zero n yields zero
func (r *Rand) NextIntSigned(n uint32) int32 {
	if n == 0 {
		return 0
	}
	return int32(r.NextU32()%(2*n+1)) - int32(n)
}

// nextReal returns a real number in [0, 1)
func (r *Rand) nextReal() float32 {
	return float32(float64(r.NextU32()) * (1.0 / 4_294_967_295.0))
}

// NextFloat returns a real number in [0, n)
func (r *Rand) NextFloat(n float32) float32 {
	return r.nextReal() * n
}

// NextFloatSigned returns a real number in [-n, n)
func (r *Rand) NextFloatSigned(n float32) float32 {
	return r.nextReal()*(2*n) - n
}
