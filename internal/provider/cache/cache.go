package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cointether/internal/fsutil"
	"cointether/internal/logging"
	"cointether/internal/provider"
	"cointether/internal/symbols"
)

// PersistError reports that a snapshot could not be written to disk.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist price cache %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// LoadResult is the outcome of reading the cache. A degraded result carries an
// empty snapshot and the reason the stored one could not be used.
type LoadResult struct {
	Snapshot provider.Snapshot
	Degraded bool
	Err      error
}

// entry is the on-disk form of one quote.
type entry struct {
	PriceA decimal.Decimal `json:"price_a"`
	PriceB decimal.Decimal `json:"price_b"`
	Image  string          `json:"image,omitempty"`
}

type file struct {
	CapturedAt time.Time        `json:"captured_at"`
	Quotes     map[string]entry `json:"quotes"`
}

// ErrUnknownLayout is reported, degraded, for a JSON object that carries no
// "quotes" key, such as a bare symbol to price mapping.
var ErrUnknownLayout = errors.New("unrecognised price cache layout")

// FileCache keeps the last successful snapshot in memory and in one JSON file.
type FileCache struct {
	path   string
	logger *logging.Logger

	// writeMu orders stores so the file always holds what memory holds.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current LoadResult
}

// Open reads the snapshot stored at path once. Absence or corruption is never
// an error: the cache starts empty and the reason is kept in the LoadResult.
func Open(path string, logger *logging.Logger) *FileCache {
	if logger == nil {
		logger = logging.NewSilent()
	}
	c := &FileCache{path: path, logger: logger}
	c.current = ReadFile(path)
	if c.current.Degraded {
		logger.Warn().Err(c.current.Err).Str("path", path).Msg("price cache unreadable, continuing without cached prices")
	} else {
		logger.Debug().Str("path", path).Int("quotes", c.current.Snapshot.Len()).Msg("price cache loaded")
	}
	return c
}

// Load returns the current snapshot.
func (c *FileCache) Load() LoadResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := c.current
	res.Snapshot = res.Snapshot.Clone()
	return res
}

// Store replaces the snapshot in memory, then on disk. The in-memory copy is
// replaced even when persisting fails.
func (c *FileCache) Store(s provider.Snapshot) error {
	s = s.Clone()
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.current = LoadResult{Snapshot: s}
	c.mu.Unlock()

	f := file{CapturedAt: s.CapturedAt, Quotes: make(map[string]entry, s.Len())}
	for sym, q := range s.Quotes {
		f.Quotes[sym] = entry{PriceA: q.PriceA, PriceB: q.PriceB, Image: q.Image}
	}
	if err := fsutil.WriteJSONAtomic(c.path, f); err != nil {
		perr := &PersistError{Path: c.path, Err: err}
		c.logger.Warn().Err(err).Str("path", c.path).Msg("price cache not persisted")
		return perr
	}
	return nil
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) LoadResult {
	empty := provider.NewSnapshot(time.Time{})
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return LoadResult{Snapshot: empty}
	}
	if err != nil {
		return LoadResult{Snapshot: empty, Degraded: true, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return LoadResult{Snapshot: empty, Degraded: true, Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	if f.Quotes == nil {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(b, &keys); err == nil {
			delete(keys, "captured_at")
			delete(keys, "quotes")
			if len(keys) > 0 {
				return LoadResult{Snapshot: empty, Degraded: true, Err: fmt.Errorf("parse %s: %w", path, ErrUnknownLayout)}
			}
		}
	}
	quotes := make([]provider.Quote, 0, len(f.Quotes))
	for sym, e := range f.Quotes {
		if !symbols.Known(sym) || sym != symbols.Normalize(sym) {
			continue
		}
		quotes = append(quotes, provider.Quote{Symbol: sym, PriceA: e.PriceA, PriceB: e.PriceB, Image: e.Image})
	}
	return LoadResult{Snapshot: provider.NewSnapshot(f.CapturedAt, quotes...)}
}
