package gen

// Stateless keyed hash. Each (slot, salt) pair is an independent draw
// from the chart seed, which is what makes window generation
// composable: a slot always resolves the same way no matter which
// window asked for it.

const (
	saltSelect uint64 = iota + 1
	saltLane
	saltJack
	saltOpp
	saltDouble
	saltDoubleLane
)

func key(slot int64, salt uint64) uint64 {
	return uint64(slot)<<8 | salt
}

// mix is the splitmix64 finalizer over seed and key.
func mix(seed, x uint64) uint64 {
	z := seed ^ (x+0x9E3779B97F4A7C15)*0xD1B54A32D192ED03
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

// roll maps a draw to [0, 1).
func roll(seed uint64, slot int64, salt uint64) float64 {
	return float64(mix(seed, key(slot, salt))>>11) / (1 << 53)
}
