// Package history records the aggregate portfolio value of each owner over time.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cointether/internal/fsutil"
	"cointether/internal/logging"
)

// Sample is one recorded aggregate value.
type Sample struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// PersistError reports that the history file could not be written.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persist history %s: %v", e.Path, e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }

// FileRecorder stores every owner's series in one JSON file keyed by owner.
// Samples are kept in timestamp order; appends with an older timestamp are
// inserted after any samples sharing that timestamp. When maxSamples is
// positive only the newest maxSamples per owner are kept.
type FileRecorder struct {
	path       string
	maxSamples int
	logger     *logging.Logger

	mu sync.Mutex
}

func NewFileRecorder(path string, maxSamples int, logger *logging.Logger) *FileRecorder {
	if logger == nil {
		logger = logging.NewSilent()
	}
	if maxSamples < 0 {
		maxSamples = 0
	}
	return &FileRecorder{path: path, maxSamples: maxSamples, logger: logger}
}

// Append adds one sample to owner's series.
func (r *FileRecorder) Append(owner string, ts time.Time, value decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read()
	if err != nil {
		// An unreadable file is not overwritten; the samples in it would be lost.
		r.logger.Warn().Err(err).Str("path", r.path).Str("owner", owner).Msg("history not appended")
		return &PersistError{Path: r.path, Err: err}
	}

	series := all[owner]
	s := Sample{Timestamp: ts.UTC(), Value: value}
	i := sort.Search(len(series), func(i int) bool { return series[i].Timestamp.After(s.Timestamp) })
	series = append(series, Sample{})
	copy(series[i+1:], series[i:])
	series[i] = s
	if r.maxSamples > 0 && len(series) > r.maxSamples {
		series = series[len(series)-r.maxSamples:]
	}
	all[owner] = series

	if err := fsutil.WriteJSONAtomic(r.path, all); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Str("owner", owner).Msg("history not persisted")
		return &PersistError{Path: r.path, Err: err}
	}
	r.logger.Debug().Str("owner", owner).Int("samples", len(series)).Msg("history appended")
	return nil
}

// Series returns owner's samples in ascending timestamp order. A missing file
// or owner yields an empty series; only an unreadable file is an error.
func (r *FileRecorder) Series(owner string) ([]Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read()
	if err != nil {
		return []Sample{}, err
	}
	series := all[owner]
	out := make([]Sample, len(series))
	copy(out, series)
	return out, nil
}

// Owners lists every owner with at least one sample.
func (r *FileRecorder) Owners() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for owner, series := range all {
		if len(series) > 0 {
			out = append(out, owner)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *FileRecorder) read() (map[string][]Sample, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]Sample{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	var all map[string][]Sample
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if all == nil {
		all = map[string][]Sample{}
	}
	for owner, series := range all {
		sort.SliceStable(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })
		all[owner] = series
	}
	return all, nil
}
