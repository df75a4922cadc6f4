package insight

// Master numbers carry standalone numerological meaning and must never be
// reduced to a single digit.
var masterNumbers = map[int]struct{}{
	11: {},
	22: {},
	33: {},
	44: {},
}

// IsMaster reports whether n is a master number.
func IsMaster(n int) bool {
	_, ok := masterNumbers[n]
	return ok
}

// Reduce sums the digits of n until a single digit remains, stopping early
// when an intermediate value is a master number.
func Reduce(n int) int {
	if n < 0 {
		n = -n
	}
	for n > 9 && !IsMaster(n) {
		sum := 0
		for n > 0 {
			sum += n % 10
			n /= 10
		}
		n = sum
	}
	return n
}
