package codec

// Shared level scale. Policies resolve levels on this range and each codec
// projects it onto its native one.
const (
	minScale = 1
	maxScale = 22
)

func clampScale(level int) int {
	if level < minScale {
		return minScale
	}
	if level > maxScale {
		return maxScale
	}
	return level
}

// scaleLevel maps a level on the shared scale onto [lo, hi] with rounding.
// Both endpoints are reachable: 1 maps to lo and 22 maps to hi.
func scaleLevel(level, lo, hi int) int {
	level = clampScale(level)
	span := maxScale - minScale
	return lo + ((level-minScale)*(hi-lo)+span/2)/span
}
