package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-analytics/pkg/insights"
	"ticket-analytics/pkg/loader"
	"ticket-analytics/pkg/models"
	"ticket-analytics/pkg/snapshot"
	"ticket-analytics/pkg/timeseries"
)

const header = "Order ID,Order date,Event start date,Event name,Buyer email,Purchaser city,Purchaser state,Payment type,Ticket quantity,Gross sales\n"

// countingSource records how often the underlying export is parsed.
type countingSource struct {
	*loader.DirSource
	loads int
}

func (c *countingSource) Load(ctx context.Context) ([]models.RawRecord, models.LoadStats, error) {
	c.loads++
	return c.DirSource.Load(ctx)
}

func fixture(t *testing.T) (string, *countingSource) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(header+body), 0o644))
	}
	write("Friday.csv",
		"1,2024-03-01 10:00:00,2024-03-01,Late Show,a@x.com,Washington,DC,Paid,2,30\n"+
			"2,2024-03-07 10:00:00,2024-03-08,Late Show,a@x.com,Washington,DC,Paid,1,15\n"+
			"3,2024-03-08 19:00:00,2024-03-08,Late Show,b@x.com,Arlington,VA,Free,1,0\n"+
			"4,2024-03-14 09:00:00,2024-03-15,Late Show,a@x.com,Washington,DC,Paid,3,45\n")
	write("Monday.csv",
		"5,2024-03-04 18:00:00,2024-03-04,Open Mic,c@x.com,Bethesda,MD,Paid,1,10\n"+
			"6,2024-03-10 18:00:00,2024-03-11,Open Mic,c@x.com,Bethesda,MD,Paid,1,10\n")
	return dir, &countingSource{DirSource: loader.NewDirSource(dir, false)}
}

func newService(t *testing.T, src loader.Source) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis_results.json")
	svc, err := New(src, models.Config{}, path, 4)
	require.NoError(t, err)
	return svc, path
}

func TestState_CachedByFingerprint(t *testing.T) {
	dir, src := fixture(t)
	svc, _ := newService(t, src)
	ctx := context.Background()

	first, err := svc.State(ctx)
	require.NoError(t, err)
	second, err := svc.State(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, src.loads)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "Monday.csv"), later, later))
	third, err := svc.State(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
	assert.Equal(t, 2, src.loads)

	svc.Invalidate()
	_, err = svc.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, src.loads)
}

func TestBasic_SnapshotReadThrough(t *testing.T) {
	dir, src := fixture(t)
	svc, path := newService(t, src)
	ctx := context.Background()

	snap, fromFile, err := svc.Basic(ctx)
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.Equal(t, 6, snap.Headline.TotalOrders)
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, fromFile, err := svc.Basic(ctx)
	require.NoError(t, err)
	assert.True(t, fromFile)
	assert.Equal(t, snap.RunID, again.RunID)

	// New data makes the snapshot stale.
	f, err := os.OpenFile(filepath.Join(dir, "Monday.csv"), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("7,2024-03-17 18:00:00,2024-03-18,Open Mic,d@x.com,Bethesda,MD,Paid,1,10\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	fresh, fromFile, err := svc.Basic(ctx)
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.NotEqual(t, snap.RunID, fresh.RunID)
	assert.Equal(t, 7, fresh.Headline.TotalOrders)

	onDisk, err := snapshot.Read(path)
	require.NoError(t, err)
	assert.Equal(t, fresh.RunID, onDisk.RunID)
}

func TestBasic_SnapshotKeyedByWindow(t *testing.T) {
	_, src := fixture(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "analysis_results.json")
	withWindow := func(start, end string) *Service {
		svc, err := New(src, models.Config{StartMonth: start, EndMonth: end}, path, 4)
		require.NoError(t, err)
		return svc
	}

	all, fromFile, err := withWindow("", "").Basic(ctx)
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.Equal(t, 6, all.Headline.TotalOrders)
	assert.Empty(t, all.Window)

	// No event falls in April: the unwindowed snapshot must not be served.
	_, _, err = withWindow("042024", "042024").Basic(ctx)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))

	march, fromFile, err := withWindow("032024", "032024").Basic(ctx)
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.Equal(t, "032024-032024", march.Window)
	assert.NotEqual(t, all.RunID, march.RunID)

	plain := withWindow("", "")
	again, fromFile, err := plain.Basic(ctx)
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.NotEqual(t, march.RunID, again.RunID)

	cached, fromFile, err := plain.Basic(ctx)
	require.NoError(t, err)
	assert.True(t, fromFile)
	assert.Equal(t, again.RunID, cached.RunID)
}

func TestQueries(t *testing.T) {
	_, src := fixture(t)
	svc, _ := newService(t, src)
	st, err := svc.State(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Monday", "Friday"}, st.Days())

	shows := st.Shows(ShowFilter{})
	require.Len(t, shows, 5)
	assert.Equal(t, "2024-03-08_Friday", shows[0].ShowID)
	assert.Len(t, st.Shows(ShowFilter{Day: "Monday"}), 2)
	assert.Len(t, st.Shows(ShowFilter{MinOrders: 2}), 1)

	series, err := st.Series(SeriesQuery{Metric: MetricRevenue, Granularity: Daily, Anomalies: 2})
	require.NoError(t, err)
	assert.Len(t, series.Values, len(series.Labels))
	assert.Equal(t, series.Values, series.Smoothed)
	assert.Len(t, series.Anomalies, len(series.Values))

	weekly, err := st.Series(SeriesQuery{Day: "Friday", Metric: MetricOrders, Granularity: Weekly,
		Smoothing: timeseries.Params{Method: timeseries.MethodRolling, Window: 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 1}, weekly.Values)

	_, err = st.Series(SeriesQuery{Metric: "Profit"})
	assert.Error(t, err)
	_, err = st.Series(SeriesQuery{Granularity: "hourly"})
	assert.Error(t, err)

	top, err := st.CaseStudy(insights.KindSpend, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "a@x.com", top[0].CustomerID)
	assert.Len(t, st.Lifecycles(5, true), 1)

	wow, err := st.WeekOverWeek("Friday")
	require.NoError(t, err)
	assert.Len(t, wow.Shows, 3)
	_, err = st.WeekOverWeek("Sunday")
	assert.Error(t, err)

	total := 0
	for _, c := range st.Heatmap() {
		total += c.Orders
	}
	assert.Equal(t, 6, total)

	assert.NotEmpty(t, st.Recommendations())
	assert.Len(t, st.Insights("", 2).Narrative, 2)
	assert.Equal(t, "2024-03-01", st.Insights("Friday", 2).PeakDay)
}
