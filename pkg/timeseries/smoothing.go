// Package timeseries smooths daily/weekly series and flags outliers.
// Every function is pure; missing entries are NaN.
package timeseries

import (
	"math"

	"github.com/pkg/errors"
)

// Smoothing methods.
const (
	MethodRolling     = "rolling"
	MethodExponential = "exponential"
	MethodSavgol      = "savgol"
	MethodNone        = "none"
)

// Params selects a smoothing method and its parameters.
type Params struct {
	Method string  `yaml:"method"`
	Window int     `yaml:"window"`
	Alpha  float64 `yaml:"alpha"`
}

// DefaultParams mirrors the interactive defaults: 7-point rolling mean, alpha 0.3.
var DefaultParams = Params{Method: MethodRolling, Window: 7, Alpha: 0.3}

// Validate checks the parameters the chosen method uses.
func (p Params) Validate() error {
	switch p.Method {
	case MethodRolling:
		if p.Window < 1 {
			return errors.Errorf("rolling window must be >= 1, got %d", p.Window)
		}
	case MethodExponential:
		if !(p.Alpha > 0 && p.Alpha <= 1) {
			return errors.Errorf("alpha must be in (0, 1], got %g", p.Alpha)
		}
	case MethodSavgol:
		if p.Window < 5 || p.Window%2 == 0 {
			return errors.Errorf("savgol window must be odd and >= 5, got %d", p.Window)
		}
	case MethodNone:
	default:
		return errors.Errorf("unknown smoothing method %q", p.Method)
	}
	return nil
}

// Smooth dispatches on p.Method.
func Smooth(xs []float64, p Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Method {
	case MethodRolling:
		return MovingAverage(xs, p.Window), nil
	case MethodExponential:
		return Exponential(xs, p.Alpha), nil
	case MethodSavgol:
		return SavitzkyGolay(xs, p.Window), nil
	default:
		return clone(xs), nil
	}
}

// MovingAverage is a centered rolling mean. Positions whose full window does
// not fit, or whose window holds a NaN, are NaN. For an even window the extra
// point is taken on the left.
func MovingAverage(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	if window <= 1 {
		copy(out, xs)
		return out
	}
	for i := range xs {
		lo := i - window/2
		hi := lo + window - 1
		if lo < 0 || hi >= len(xs) {
			out[i] = math.NaN()
			continue
		}
		s := 0.0
		for _, x := range xs[lo : hi+1] {
			s += x
		}
		out[i] = s / float64(window)
	}
	return out
}

// Exponential is the adjusted exponentially weighted mean: the point i steps
// back carries weight (1-alpha)^i. NaN inputs contribute no weight but still
// age the earlier points.
func Exponential(xs []float64, alpha float64) []float64 {
	out := make([]float64, len(xs))
	decay := 1 - alpha
	num, den := 0.0, 0.0
	for i, x := range xs {
		num *= decay
		den *= decay
		if !math.IsNaN(x) {
			num += x
			den++
		}
		if den == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = num / den
	}
	return out
}

const savgolDegree = 3

// SavitzkyGolay fits a cubic over each window and evaluates it at the centre.
// The first and last half-windows are read off the polynomial fitted to the
// first and last full window. A window that does not fit inside xs returns a
// copy of xs.
func SavitzkyGolay(xs []float64, window int) []float64 {
	if window%2 == 0 || window <= savgolDegree || window >= len(xs) {
		return clone(xs)
	}
	half := window / 2
	out := make([]float64, len(xs))
	for i := half; i < len(xs)-half; i++ {
		c := polyfit(xs[i-half:i+half+1], savgolDegree)
		out[i] = c[0]
	}

	head := polyfit(xs[:window], savgolDegree)
	for i := 0; i < half; i++ {
		out[i] = polyval(head, float64(i-half))
	}
	tail := polyfit(xs[len(xs)-window:], savgolDegree)
	for i := len(xs) - half; i < len(xs); i++ {
		out[i] = polyval(tail, float64(i-(len(xs)-1-half)))
	}
	return out
}

// polyfit returns least-squares coefficients c[0..deg] for ys sampled at
// x = -half..half, so c[0] is the value at the window centre.
func polyfit(ys []float64, deg int) []float64 {
	n := deg + 1
	half := len(ys) / 2
	// Normal equations: (AᵀA) c = Aᵀy, with A[j][k] = x_j^k.
	a := make([][]float64, n)
	for r := range a {
		a[r] = make([]float64, n+1)
	}
	for j, y := range ys {
		x := float64(j - half)
		pow := make([]float64, 2*n)
		pow[0] = 1
		for k := 1; k < len(pow); k++ {
			pow[k] = pow[k-1] * x
		}
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				a[r][c] += pow[r+c]
			}
			a[r][n] += pow[r] * y
		}
	}
	return solve(a)
}

// solve runs Gauss-Jordan elimination with partial pivoting on an augmented matrix.
func solve(a [][]float64) []float64 {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		a[col], a[pivot] = a[pivot], a[col]
		p := a[col][col]
		if p == 0 {
			continue
		}
		for c := col; c <= n; c++ {
			a[col][c] /= p
		}
		for r := 0; r < n; r++ {
			if r == col || a[r][col] == 0 {
				continue
			}
			f := a[r][col]
			for c := col; c <= n; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = a[i][n]
	}
	return out
}

func polyval(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}

func clone(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	return out
}
