// Package dashboard is the query layer behind the interactive views. Analysis
// states are cached by input fingerprint, so a changed export directory is
// picked up on the next query instead of serving stale results.
package dashboard

import (
	"context"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"ticket-analytics/pkg/calculator"
	"ticket-analytics/pkg/features"
	"ticket-analytics/pkg/insights"
	"ticket-analytics/pkg/loader"
	"ticket-analytics/pkg/models"
	"ticket-analytics/pkg/snapshot"
)

// State is one fully computed analysis of the source at a given fingerprint.
type State struct {
	Fingerprint  string
	Load         models.LoadStats
	Prepare      models.PrepareStats
	Transactions []models.Transaction
	Analysis     *models.Analysis
}

// Service answers dashboard queries over a source.
type Service struct {
	src          loader.Source
	run          models.Config
	snapshotPath string
	cache        *lru.Cache[string, *State]
}

// New builds a service keeping up to cacheSize analysis states.
func New(src loader.Source, run models.Config, snapshotPath string, cacheSize int) (*Service, error) {
	cache, err := lru.New[string, *State](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "state cache")
	}
	return &Service{src: src, run: run, snapshotPath: snapshotPath, cache: cache}, nil
}

// State returns the analysis for the current input, recomputing only when the
// source fingerprint has changed.
func (s *Service) State(ctx context.Context) (*State, error) {
	fp, err := s.src.Fingerprint(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fingerprint")
	}
	if st, ok := s.cache.Get(fp); ok {
		log.Debug().Str("fingerprint", fp).Msg("state cache hit")
		return st, nil
	}

	records, stats, err := s.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	txs, prep := features.Prepare(records)
	txs, err = calculator.Window(txs, s.run.StartMonth, s.run.EndMonth)
	if err != nil {
		return nil, err
	}
	a, err := calculator.Analyze(ctx, txs, s.run.Verbose)
	if err != nil {
		return nil, errors.Wrap(err, "analysis")
	}
	st := &State{Fingerprint: fp, Load: stats, Prepare: prep, Transactions: txs, Analysis: a}
	s.cache.Add(fp, st)
	log.Debug().Str("fingerprint", fp).Int("records", stats.Total).Msg("state computed")
	return st, nil
}

// Invalidate drops every cached state.
func (s *Service) Invalidate() {
	s.cache.Purge()
}

// Publish computes the current state and writes it as the snapshot file.
func (s *Service) Publish(ctx context.Context) (*State, *models.Snapshot, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, nil, err
	}
	snap := snapshot.Build(st.Analysis, st.Fingerprint, s.run.Window(), st.Recommendations())
	if err := snapshot.Write(s.snapshotPath, snap); err != nil {
		return st, nil, err
	}
	return st, snap, nil
}

// Basic returns the batch results, reading them from the snapshot file when it
// was produced from the current input over the same month window. fromFile
// reports which path was taken.
func (s *Service) Basic(ctx context.Context) (snap *models.Snapshot, fromFile bool, err error) {
	fp, err := s.src.Fingerprint(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "fingerprint")
	}
	cached, err := snapshot.Read(s.snapshotPath)
	switch {
	case err == nil && cached.Fingerprint == fp && cached.Window == s.run.Window():
		log.Debug().Str("path", s.snapshotPath).Msg("snapshot is current")
		return cached, true, nil
	case err == nil:
		log.Info().Str("path", s.snapshotPath).Msg("snapshot is stale, recomputing")
	case errors.Is(err, os.ErrNotExist):
	default:
		log.Warn().Err(err).Msg("ignoring unreadable snapshot")
	}
	_, snap, err = s.Publish(ctx)
	return snap, false, err
}

// Recommendations runs the recommendation battery over the state.
func (st *State) Recommendations() []string {
	return insights.Recommendations(st.Analysis)
}
