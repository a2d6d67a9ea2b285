package domain

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgMask       = 0x7fffffff // 2^31 - 1
)

// Generator is a 31-bit linear congruential generator. It is owned by a single
// synthesis call and is not safe for concurrent use.
type Generator struct {
	state uint32
}

// NewGenerator seeds a generator. Negative seeds use their two's-complement bits.
func NewGenerator(seed int32) *Generator {
	return &Generator{state: uint32(seed)}
}

// Next advances the generator and returns a draw in [0, 1]. The upper bound is
// reached only when the state equals 2^31-1.
func (g *Generator) Next() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) & lcgMask
	return float64(g.state) / lcgMask
}
