// Package snapshot persists the batch results as a JSON file the dashboard
// can reuse without recomputing.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"ticket-analytics/pkg/models"
)

// DefaultPath is where the batch report writes its snapshot.
const DefaultPath = "analysis_results.json"

// Build assembles the persisted view of an analysis computed from the input
// at fingerprint over the given event-month window.
func Build(a *models.Analysis, fingerprint, window string, recommendations []string) *models.Snapshot {
	return &models.Snapshot{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Fingerprint:     fingerprint,
		Window:          window,
		Headline:        a.Headline,
		Hourly:          a.Hourly,
		OrdersByDay:     a.OrdersByDay,
		TopStates:       a.TopStates,
		TopCities:       a.TopCities,
		Payments:        a.Payments,
		Quantities:      a.Quantities,
		BookingWindows:  a.BookingWindows,
		DayPerformance:  a.DayPerformance,
		Seasonal:        a.Seasonal,
		Acquisition:     a.Acquisition,
		Shows:           a.Shows,
		Recommendations: recommendations,
	}
}

// Write stores s at path as indented JSON. The file is written to a temporary
// name in the same directory and renamed into place.
func Write(path string, s *models.Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename snapshot to %s", path)
	}
	log.Info().Str("path", path).Str("run_id", s.RunID).Msg("Results saved")
	return nil
}

// Read loads a snapshot. A missing file is reported with os.ErrNotExist.
func Read(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot %s", path)
	}
	var s models.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decode snapshot %s", path)
	}
	return &s, nil
}
