package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/goodnews-cli/internal/dataset"
	"github.com/KaramelBytes/goodnews-cli/internal/indicator"
	"github.com/KaramelBytes/goodnews-cli/internal/utils"
)

// Source says where a loaded table came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceDownload Source = "download"
)

// Fetcher downloads indicator CSVs and caches them under CacheDir.
type Fetcher struct {
	httpClient       *http.Client
	cacheDir         string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleep            func(time.Duration)
}

// New returns a Fetcher with the given timeout and retry policy; zero values
// fall back to 30s, 3 attempts, 500ms base and 4s cap.
func New(cacheDir string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *Fetcher {
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &Fetcher{
		httpClient:       &http.Client{Timeout: httpTimeout},
		cacheDir:         cacheDir,
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
		sleep:            time.Sleep,
	}
}

// CachePath is where the CSV for spec is stored.
func (f *Fetcher) CachePath(spec indicator.Spec) string {
	return filepath.Join(f.cacheDir, spec.Name+".csv")
}

// Load returns the raw table for spec, from cache unless refresh is set or
// no cached copy exists. Every failure is reported as an UnavailableError.
func (f *Fetcher) Load(ctx context.Context, spec indicator.Spec, refresh bool) (*dataset.Table, Source, error) {
	path := f.CachePath(spec)
	if !refresh {
		if _, err := os.Stat(path); err == nil {
			t, err := dataset.ReadCSVFile(path)
			if err != nil {
				return nil, SourceCache, &UnavailableError{Indicator: spec.Name, Err: err}
			}
			return t, SourceCache, nil
		}
	}
	if err := f.Download(ctx, spec); err != nil {
		return nil, SourceDownload, &UnavailableError{Indicator: spec.Name, Err: err}
	}
	t, err := dataset.ReadCSVFile(path)
	if err != nil {
		return nil, SourceDownload, &UnavailableError{Indicator: spec.Name, Err: err}
	}
	return t, SourceDownload, nil
}

// Download fetches spec.URL into the cache, replacing any previous copy
// atomically.
func (f *Fetcher) Download(ctx context.Context, spec indicator.Spec) error {
	if strings.TrimSpace(spec.URL) == "" {
		return fmt.Errorf("indicator %s has no url", spec.Name)
	}
	body, err := f.get(ctx, spec.URL)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(f.cacheDir); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}
	return utils.SafeWriteFile(f.CachePath(spec), body)
}

// get performs a GET with exponential backoff on network timeouts, 429 and
// 5xx responses, honouring Retry-After when present.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	backoff := f.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= f.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "goodnews-cli")
		req.Header.Set("Accept", "text/csv")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			if isRetryableNetErr(err) && attempt < f.retryMaxAttempts {
				f.wait(backoff)
				backoff *= 2
				continue
			}
			return nil, lastErr
		}
		body, err := readBody(resp)
		if err == nil {
			return body, nil
		}
		lastErr = err
		var se *StatusError
		if !errors.As(err, &se) || !se.Retryable() || attempt >= f.retryMaxAttempts {
			return nil, err
		}
		if se.RetryAfter > 0 {
			f.sleep(se.RetryAfter)
			continue
		}
		f.wait(backoff)
		backoff *= 2
	}
	return nil, lastErr
}

func (f *Fetcher) wait(backoff time.Duration) {
	d := withJitter(backoff)
	if f.retryMaxDelay > 0 && d > f.retryMaxDelay {
		d = f.retryMaxDelay
	}
	f.sleep(d)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		se := &StatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String(), Body: strings.TrimSpace(string(b))}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := parseRetryAfterSeconds(ra); err == nil && secs > 0 {
				se.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, se
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// parseRetryAfterSeconds interprets Retry-After as seconds or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// withJitter applies +/- 20% jitter.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
