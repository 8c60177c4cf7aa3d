package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"ticket-analytics/pkg/models"
)

// Source produces the raw order records for one analysis run.
type Source interface {
	Load(ctx context.Context) ([]models.RawRecord, models.LoadStats, error)
	// Fingerprint changes whenever the underlying data may have changed.
	Fingerprint(ctx context.Context) (string, error)
}

// DirSource reads one CSV export per weekday from a directory.
type DirSource struct {
	Dir     string
	Verbose bool
}

// NewDirSource returns a source over dir.
func NewDirSource(dir string, verbose bool) *DirSource {
	return &DirSource{Dir: dir, Verbose: verbose}
}

// Files lists the CSV exports of the directory in lexical order, skipping "eda" files.
func (s *DirSource) Files() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "read dir %s: %v", s.Dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		if strings.Contains(strings.ToLower(name), "eda") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "no csv files in %s", s.Dir)
	}
	return files, nil
}

// Load reads every export and tags each row with the file's base name.
func (s *DirSource) Load(ctx context.Context) ([]models.RawRecord, models.LoadStats, error) {
	var stats models.LoadStats
	files, err := s.Files()
	if err != nil {
		return nil, stats, err
	}

	bar := newBar(len(files), "loading", s.Verbose)
	var records []models.RawRecord
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		tag := strings.TrimSuffix(name, filepath.Ext(name))
		rows, err := readFile(filepath.Join(s.Dir, name), name, tag)
		if errors.Is(err, errMissingColumns) {
			log.Warn().Str("file", name).Err(err).Msg("skipping export")
			stats.Skipped = append(stats.Skipped, name)
			_ = bar.Add(1)
			continue
		}
		if err != nil {
			return nil, stats, errors.Wrapf(err, "read %s", name)
		}
		records = append(records, rows...)
		stats.Files = append(stats.Files, models.FileStat{Name: name, Tag: tag, Rows: len(rows)})
		log.Info().Str("day", tag).Int("records", len(rows)).Msgf("Loaded %d records from %s", len(rows), tag)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	stats.Total = len(records)
	if len(stats.Files) == 0 {
		return nil, stats, errors.Wrap(models.ErrDataUnavailable, "required columns missing from every file")
	}
	if len(records) == 0 {
		return nil, stats, errors.Wrapf(models.ErrDataUnavailable, "no records in %s", s.Dir)
	}
	log.Info().Int("records", stats.Total).Int("files", len(stats.Files)).Msg("Total records loaded")
	return records, stats, nil
}

// Fingerprint hashes the names, sizes and modification times of the exports.
func (s *DirSource) Fingerprint(_ context.Context) (string, error) {
	files, err := s.Files()
	if err != nil {
		return "", err
	}
	h := xxhash.New()
	for _, name := range files {
		info, err := os.Stat(filepath.Join(s.Dir, name))
		if err != nil {
			return "", errors.Wrapf(err, "stat %s", name)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", name, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

var errMissingColumns = errors.New("missing required columns")

func readFile(path, name, tag string) ([]models.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, name, tag)
}

// ReadCSV parses one export. Short rows read as empty trailing fields.
func ReadCSV(r io.Reader, name, tag string) ([]models.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errMissingColumns, "empty file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, errors.Wrapf(errMissingColumns, "%s", strings.Join(missing, ", "))
	}

	var out []models.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", len(out)+2)
		}
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				fields[h] = row[i]
			} else {
				fields[h] = ""
			}
		}
		out = append(out, models.RawRecord{Fields: fields, DayOfWeek: tag, Source: name})
	}
	return out, nil
}

func missingColumns(headers []string) []string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	var missing []string
	for _, c := range models.RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func newBar(n int, desc string, verbose bool) *progressbar.ProgressBar {
	if verbose || term.IsTerminal(int(os.Stderr.Fd())) {
		return progressbar.NewOptions(n,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(desc),
			progressbar.OptionClearOnFinish(),
		)
	}
	return progressbar.DefaultSilent(int64(n), desc)
}
