package timeseries

import "math"

// DefaultThreshold is the z-score above which a point is flagged.
const DefaultThreshold = 2.0

// Anomalies flags the entries whose population z-score exceeds threshold in
// absolute value. NaN entries are ignored and never flagged; a series with no
// spread flags nothing.
func Anomalies(xs []float64, threshold float64) []bool {
	mask := make([]bool, len(xs))
	mean := Mean(xs)
	std := stdDev(xs, 0)
	if math.IsNaN(std) || std == 0 {
		return mask
	}
	for i, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		mask[i] = math.Abs((x-mean)/std) > threshold
	}
	return mask
}

// CountTrue counts the flagged entries of a mask.
func CountTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

// Mean averages the non-NaN entries; NaN when there are none.
func Mean(xs []float64) float64 {
	s, n := 0.0, 0
	for _, x := range xs {
		if !math.IsNaN(x) {
			s += x
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}

// StdDev is the sample standard deviation of the non-NaN entries.
func StdDev(xs []float64) float64 { return stdDev(xs, 1) }

func stdDev(xs []float64, ddof int) float64 {
	mean := Mean(xs)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	ss, n := 0.0, 0
	for _, x := range xs {
		if !math.IsNaN(x) {
			ss += (x - mean) * (x - mean)
			n++
		}
	}
	if n-ddof <= 0 {
		return math.NaN()
	}
	return math.Sqrt(ss / float64(n-ddof))
}

// PctChange is the fractional change from the previous entry. The first entry,
// and any entry whose predecessor is zero or NaN, is NaN.
func PctChange(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i == 0 || xs[i-1] == 0 || math.IsNaN(xs[i-1]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = xs[i]/xs[i-1] - 1
	}
	return out
}

// Trend compares the mean of the last n entries against the mean of the
// first n, in percent. It is 0 when the earlier mean is not positive.
func Trend(xs []float64, n int) float64 {
	if len(xs) == 0 || n <= 0 {
		return 0
	}
	k := min(n, len(xs))
	older := Mean(xs[:k])
	recent := Mean(xs[len(xs)-k:])
	if math.IsNaN(older) || math.IsNaN(recent) || older <= 0 {
		return 0
	}
	return (recent - older) / older * 100
}

// ArgMax returns the index of the largest non-NaN entry, first one on ties;
// -1 when there is none.
func ArgMax(xs []float64) int {
	best := -1
	for i, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		if best < 0 || x > xs[best] {
			best = i
		}
	}
	return best
}
