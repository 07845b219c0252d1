package random

// Word-level constants of the 32-bit Mersenne Twister.
const (
	mtWords   = 624
	mtShift   = 397
	mtTwist   = 0x9908b0df
	mtHigh    = 0x80000000
	mtLow     = 0x7fffffff
	mtInitMul = 1812433253
)

// MT19937 is the 32-bit Mersenne Twister. Seeding, float conversion and
// the int32 draw reproduce numpy.random.RandomState bit for bit, so a
// seeded fit consumes the same stream as umap-learn.
type MT19937 struct {
	state [mtWords]uint32
	pos   int
}

// NewMT19937 returns a generator seeded like RandomState(seed).
func NewMT19937(seed uint32) *MT19937 {
	mt := &MT19937{pos: mtWords}
	mt.state[0] = seed
	for i := 1; i < mtWords; i++ {
		prev := mt.state[i-1]
		mt.state[i] = mtInitMul*(prev^(prev>>30)) + uint32(i)
	}
	return mt
}

// regenerate refills the whole state block.
func (mt *MT19937) regenerate() {
	s := &mt.state
	for i := range mtWords {
		word := s[i]&mtHigh | s[(i+1)%mtWords]&mtLow
		next := s[(i+mtShift)%mtWords] ^ word>>1
		if word&1 != 0 {
			next ^= mtTwist
		}
		s[i] = next
	}
	mt.pos = 0
}

// Uint32 returns the next tempered output word.
func (mt *MT19937) Uint32() uint32 {
	if mt.pos >= mtWords {
		mt.regenerate()
	}
	v := mt.state[mt.pos]
	mt.pos++

	v ^= v >> 11
	v ^= v << 7 & 0x9d2c5680
	v ^= v << 15 & 0xefc60000
	return v ^ v>>18
}

// Float64 returns a 53-bit float in [0, 1) built from two words, as
// random_sample does.
func (mt *MT19937) Float64() float64 {
	hi := mt.Uint32() >> 5
	lo := mt.Uint32() >> 6
	return (float64(hi)*(1<<26) + float64(lo)) / (1 << 53)
}

// Intn returns an integer in [min, max).
func (mt *MT19937) Intn(min, max int) int {
	return bounded(int64(mt.Uint32()), min, max)
}

// Fill fills buf with values in [0, 1).
func (mt *MT19937) Fill(buf []float64) {
	for i := range buf {
		buf[i] = mt.Float64()
	}
}

// ThreadSafe always reports false.
func (mt *MT19937) ThreadSafe() bool { return false }

// RandInt32 draws one word and shifts it into the signed range, matching
// randint(INT32_MIN, INT32_MAX+1).
func (mt *MT19937) RandInt32() int32 {
	return int32(mt.Uint32() - mtHigh)
}

// Tausworthe seeds a Tausworthe generator from the next three RandInt32
// draws. umap-learn seeds its SGD state the same way.
func (mt *MT19937) Tausworthe() *Tausworthe {
	s0 := int64(mt.RandInt32())
	s1 := int64(mt.RandInt32())
	s2 := int64(mt.RandInt32())
	return NewTauswortheFromState(s0, s1, s2)
}
