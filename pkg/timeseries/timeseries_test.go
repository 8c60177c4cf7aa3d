package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnomalies_FlagsOnlyOutlier(t *testing.T) {
	mask := Anomalies([]float64{10, 12, 11, 50, 9, 10, 11}, DefaultThreshold)
	assert.Equal(t, []bool{false, false, false, true, false, false, false}, mask)
	assert.Equal(t, 1, CountTrue(mask))
}

func TestAnomalies_ConstantSeriesNeverFlagged(t *testing.T) {
	for _, th := range []float64{0, 0.5, 2, 10} {
		mask := Anomalies([]float64{4, 4, 4, 4, 4}, th)
		assert.Equal(t, 0, CountTrue(mask), th)
	}
	assert.Empty(t, Anomalies(nil, 2))
}

func TestAnomalies_NaNIgnoredAndAligned(t *testing.T) {
	nan := math.NaN()
	mask := Anomalies([]float64{10, nan, 12, 11, 50, 9, 10, 11}, 2)
	require.Len(t, mask, 8)
	assert.False(t, mask[1])
	assert.True(t, mask[4])
}

func TestMovingAverage(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, xs, MovingAverage(xs, 1))

	got := MovingAverage(xs, 3)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, []float64{2, 3, 4}, got[1:4])
	assert.True(t, math.IsNaN(got[4]))

	even := MovingAverage(xs, 2)
	assert.True(t, math.IsNaN(even[0]))
	assert.Equal(t, 1.5, even[1])
}

func TestExponential_Adjusted(t *testing.T) {
	got := Exponential([]float64{1, 2, 3}, 0.5)
	assert.Equal(t, 1.0, got[0])
	assert.InDelta(t, (0.5*1+2)/1.5, got[1], 1e-12)
	assert.InDelta(t, (0.25*1+0.5*2+3)/1.75, got[2], 1e-12)

	same := Exponential([]float64{1, 2, 3}, 1)
	assert.Equal(t, []float64{1, 2, 3}, same)

	withGap := Exponential([]float64{math.NaN(), 4}, 0.3)
	assert.True(t, math.IsNaN(withGap[0]))
	assert.Equal(t, 4.0, withGap[1])
}

func TestSavitzkyGolay(t *testing.T) {
	short := []float64{3, 1, 4, 1, 5}
	assert.Equal(t, short, SavitzkyGolay(short, 5))
	assert.Equal(t, short, SavitzkyGolay(short, 7))

	// A cubic is reproduced exactly, edges included.
	cubic := make([]float64, 12)
	for i := range cubic {
		x := float64(i)
		cubic[i] = 0.5*x*x*x - 2*x*x + x + 3
	}
	got := SavitzkyGolay(cubic, 7)
	require.Len(t, got, len(cubic))
	for i := range cubic {
		assert.InDelta(t, cubic[i], got[i], 1e-6, i)
	}
}

func TestSmooth_Validation(t *testing.T) {
	xs := []float64{1, 2, 3}
	_, err := Smooth(xs, Params{Method: MethodSavgol, Window: 4})
	assert.Error(t, err)
	_, err = Smooth(xs, Params{Method: MethodExponential, Alpha: 0})
	assert.Error(t, err)
	_, err = Smooth(xs, Params{Method: "lowess"})
	assert.Error(t, err)

	got, err := Smooth(xs, Params{Method: MethodNone})
	require.NoError(t, err)
	assert.Equal(t, xs, got)

	got, err = Smooth(xs, DefaultParams)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSeriesStatistics(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, Mean(xs))
	assert.InDelta(t, 2.138, StdDev(xs), 1e-3)
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
	assert.Equal(t, 7, ArgMax(xs))
	assert.Equal(t, -1, ArgMax(nil))

	pct := PctChange([]float64{10, 15, 0, 5})
	assert.True(t, math.IsNaN(pct[0]))
	assert.InDelta(t, 0.5, pct[1], 1e-12)
	assert.Equal(t, -1.0, pct[2])
	assert.True(t, math.IsNaN(pct[3]))

	assert.Equal(t, 100.0, Trend([]float64{1, 1, 2, 2}, 2))
	assert.Equal(t, 0.0, Trend([]float64{0, 0, 5}, 2))
	assert.Equal(t, 0.0, Trend(nil, 30))
}
