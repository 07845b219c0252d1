package random

// Tausworthe is the combined Tausworthe generator used by the reference
// UMAP optimizer for negative sampling. It is fast, has a tiny state and is
// not safe for concurrent use.
type Tausworthe struct {
	state [3]int64
}

// NewTausworthe creates a generator from a seed.
func NewTausworthe(seed int64) *Tausworthe {
	t := &Tausworthe{}
	t.state[0] = seed
	if t.state[0] == 0 {
		t.state[0] = 1
	}
	t.state[1] = t.state[0]*6364136223846793005 + 1442695040888963407
	t.state[2] = t.state[1]*6364136223846793005 + 1442695040888963407
	// Warm up
	for range 10 {
		t.Int32()
	}
	return t
}

// NewTauswortheFromState creates a generator from an explicit three-word
// state, e.g. one drawn from an MT19937 stream.
func NewTauswortheFromState(s0, s1, s2 int64) *Tausworthe {
	return &Tausworthe{state: [3]int64{s0, s1, s2}}
}

// Int32 advances the generator and returns the next raw value.
func (t *Tausworthe) Int32() int32 {
	s := &t.state
	s[0] = (((s[0] & 4294967294) << 12) & 0xFFFFFFFF) ^
		((((s[0] << 13) & 0xFFFFFFFF) ^ s[0]) >> 19)
	s[1] = (((s[1] & 4294967288) << 4) & 0xFFFFFFFF) ^
		((((s[1] << 2) & 0xFFFFFFFF) ^ s[1]) >> 25)
	s[2] = (((s[2] & 4294967280) << 17) & 0xFFFFFFFF) ^
		((((s[2] << 3) & 0xFFFFFFFF) ^ s[2]) >> 11)
	return int32(s[0] ^ s[1] ^ s[2])
}

// Intn returns an integer in [min, max).
func (t *Tausworthe) Intn(min, max int) int {
	return bounded(int64(t.Int32()), min, max)
}

// Float64 returns a float in [0, 1).
func (t *Tausworthe) Float64() float64 {
	return float64(uint32(t.Int32())) / 4294967296.0
}

// Fill fills buf with values in [0, 1).
func (t *Tausworthe) Fill(buf []float64) {
	for i := range buf {
		buf[i] = t.Float64()
	}
}

// ThreadSafe always reports false.
func (t *Tausworthe) ThreadSafe() bool { return false }
