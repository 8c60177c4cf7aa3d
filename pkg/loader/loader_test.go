package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-analytics/pkg/models"
)

const header = "Order ID,Order date,Event start date,Event name,Buyer email,Purchaser city,Purchaser state,Payment type,Ticket quantity,Gross sales\n"

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestDirSource_LoadTagsRowsWithFileName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Monday.csv", header+
		"1,2024-03-01 10:00:00,2024-03-04,Open Mic,A@X.com,Washington,DC,Paid,2,30\n"+
		"2,2024-03-02 11:00:00,2024-03-04,Open Mic,b@y.com,Arlington,VA,Free,1,0\n")
	writeFile(t, dir, "Friday.csv", header+
		"3,2024-03-05 12:00:00,2024-03-08,Late Show,a@x.com,Washington,DC,Paid,1,15\n"+
		"4,2024-03-06 13:00:00,2024-03-08,Late Show,c@z.com,Bethesda,MD,Paid,4,60\n")
	writeFile(t, dir, "Saturday.csv", header+
		"5,2024-03-07 14:00:00,2024-03-09,Headliner,d@z.com,Washington,DC,Paid,2,40\n"+
		"6,2024-03-08 15:00:00,2024-03-09,Headliner,e@z.com,Baltimore,MD,Paid,2,40\n")
	writeFile(t, dir, "eda_summary.csv", header+"7,2024-03-08 15:00:00,2024-03-09,x,y,z,MD,Paid,2,40\n")
	writeFile(t, dir, "notes.txt", "not a csv")

	recs, stats, err := NewDirSource(dir, false).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 6)
	assert.Equal(t, 6, stats.Total)
	require.Len(t, stats.Files, 3)

	days := map[string]int{}
	for _, r := range recs {
		days[r.DayOfWeek]++
	}
	assert.Equal(t, map[string]int{"Monday": 2, "Friday": 2, "Saturday": 2}, days)

	// lexical file order, in-file row order preserved
	assert.Equal(t, "3", recs[0].Get(models.ColOrderID))
	assert.Equal(t, "4", recs[1].Get(models.ColOrderID))
	assert.Equal(t, "Friday.csv", recs[0].Source)
}

func TestDirSource_MissingDirectory(t *testing.T) {
	_, _, err := NewDirSource(filepath.Join(t.TempDir(), "nope"), false).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}

func TestDirSource_NoCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "EDA.csv", header)
	_, _, err := NewDirSource(dir, false).Load(context.Background())
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}

func TestDirSource_RequiredColumnsMissingEverywhere(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Monday.csv", "Buyer email,Gross sales\na@x.com,10\n")
	_, stats, err := NewDirSource(dir, false).Load(context.Background())
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	assert.Equal(t, []string{"Monday.csv"}, stats.Skipped)
}

func TestDirSource_HeaderOnlyIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Monday.csv", header)
	_, _, err := NewDirSource(dir, false).Load(context.Background())
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}

func TestReadCSV_BOMAndShortRows(t *testing.T) {
	body := "\ufeffOrder ID,Order date,Event start date,Gross sales\n1,2024-01-01 10:00:00\n"
	recs, err := ReadCSV(strings.NewReader(body), "Monday.csv", "Monday")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0].Get(models.ColOrderID))
	assert.Equal(t, "", recs[0].Get(models.ColEventDate))
	assert.Equal(t, "", recs[0].Get(models.ColBuyerEmail))
}

func TestDirSource_FingerprintTracksChanges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Monday.csv", header+"1,2024-03-01 10:00:00,2024-03-04,a,b,c,DC,Paid,1,10\n")
	src := NewDirSource(dir, false)

	fp1, err := src.Fingerprint(context.Background())
	require.NoError(t, err)
	fp2, err := src.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	path := filepath.Join(dir, "Monday.csv")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	fp3, err := src.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)

	writeFile(t, dir, "Friday.csv", header)
	fp4, err := src.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, fp3, fp4)
}
