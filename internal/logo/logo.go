// Package logo downloads coin icons. A failed download is reported as a
// degraded Result instead of an error so callers render without the icon.
package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"cointether/internal/logging"
)

// HTTPClient is satisfied by *http.Client and *httpx.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrNoURL is the degraded reason for a quote that carries no image reference.
var ErrNoURL = errors.New("no logo url")

const maxLogoBytes = 512 << 10

// Result is the outcome of one logo fetch. When Degraded is set Data is empty
// and Err says why.
type Result struct {
	Data        []byte
	ContentType string
	Degraded    bool
	Err         error
}

type Fetcher struct {
	client HTTPClient
	logger *logging.Logger

	mu    sync.RWMutex
	cache map[string]Result
}

func NewFetcher(client HTTPClient, logger *logging.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Fetcher{client: client, logger: logger, cache: map[string]Result{}}
}

// Fetch returns the image at url. Successful downloads are kept in memory for
// the life of the Fetcher; failures are retried on the next call.
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{Degraded: true, Err: ErrNoURL}
	}

	f.mu.RLock()
	cached, ok := f.cache[url]
	f.mu.RUnlock()
	if ok {
		return cached
	}

	res := f.download(ctx, url)
	if res.Degraded {
		f.logger.Warn().Err(res.Err).Str("url", url).Msg("logo unavailable, continuing without icon")
		return res
	}

	f.mu.Lock()
	f.cache[url] = res
	f.mu.Unlock()
	return res
}

func (f *Fetcher) download(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Degraded: true, Err: fmt.Errorf("creating request: %w", err)}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Result{Degraded: true, Err: fmt.Errorf("performing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Degraded: true, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return Result{Degraded: true, Err: fmt.Errorf("reading body: %w", err)}
	}
	if len(data) > maxLogoBytes {
		return Result{Degraded: true, Err: fmt.Errorf("logo larger than %d bytes", maxLogoBytes)}
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return Result{Degraded: true, Err: fmt.Errorf("not an image: %s", ct)}
	}
	return Result{Data: data, ContentType: ct}
}
