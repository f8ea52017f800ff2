package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	inoerrors "github.com/inocensus/inocensus/internal/errors"
	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/query"
)

// ErrTooLarge is returned for files above the configured size limit
var ErrTooLarge = errors.New("file exceeds size limit")

// Options configures a Fetcher
type Options struct {
	BaseURL    string        // Raw content host; query.DefaultRawBase when empty
	Timeout    time.Duration // Per-attempt timeout
	MaxRetries int           // Retries for transient failures
	MaxBytes   int64         // Largest body accepted
	CacheSize  int           // Bodies kept in memory; 0 disables the cache
	RetryWait  time.Duration // Initial backoff interval
	Client     *http.Client  // Optional; a client with Timeout is built when nil
}

// Fetcher downloads raw file content
type Fetcher struct {
	opts   Options
	client *http.Client
	cache  *lru.Cache[string, string]
}

// New creates a Fetcher
func New(opts Options) (*Fetcher, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = query.DefaultRawBase
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.MaxBytes <= 0 {
		return nil, fmt.Errorf("invalid size limit: %d", opts.MaxBytes)
	}

	f := &Fetcher{opts: opts, client: opts.Client}
	if f.client == nil {
		f.client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		f.cache = cache
	}
	return f, nil
}

// URL returns the address ref is downloaded from
func (f *Fetcher) URL(ref query.FileRef) string {
	return ref.URL(f.opts.BaseURL)
}

// Fetch downloads the content of ref. Client errors other than 408 and 429
// are returned at once; everything else is retried with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, ref query.FileRef) (string, error) {
	url := f.URL(ref)
	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			logger.Debug("Cache hit for %s", url)
			return body, nil
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.opts.RetryWait
	policy.MaxElapsedTime = 0

	attempt := 0
	var body string
	operation := func() error {
		attempt++
		var err error
		body, err = f.get(ctx, url)
		if err == nil {
			return nil
		}
		var fetchErr *inoerrors.FetchError
		if errors.Is(err, ErrTooLarge) || (errors.As(err, &fetchErr) && fetchErr.Permanent()) {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		logger.Debug("Attempt %d for %s failed: %v", attempt, url, err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(f.opts.MaxRetries)), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return "", err
	}

	if f.cache != nil {
		f.cache.Add(url, body)
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", inoerrors.NewFetchError(url, 0, err.Error())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", inoerrors.NewFetchError(url, 0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", inoerrors.NewFetchError(url, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if resp.ContentLength > f.opts.MaxBytes {
		return "", fmt.Errorf("%s is %s: %w", url, humanize.IBytes(uint64(resp.ContentLength)), ErrTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return "", inoerrors.NewFetchError(url, 0, err.Error())
	}
	if int64(len(data)) > f.opts.MaxBytes {
		return "", fmt.Errorf("%s is larger than %s: %w", url, humanize.IBytes(uint64(f.opts.MaxBytes)), ErrTooLarge)
	}
	return string(data), nil
}

// CacheLen returns the number of cached bodies
func (f *Fetcher) CacheLen() int {
	if f.cache == nil {
		return 0
	}
	return f.cache.Len()
}
