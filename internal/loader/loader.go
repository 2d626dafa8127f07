// Package loader turns a source (an http(s) URL, a local .csv/.tsv/.xlsx
// path, or "-" for stdin) into a table.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// maxBodyBytes caps a single download.
const maxBodyBytes = 256 << 20

// Options configures HTTP behavior and caching.
type Options struct {
	HTTPTimeout      time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	CacheEnabled     bool
	CacheMaxBytes    int64
	Logger           *slog.Logger
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		HTTPTimeout:      60 * time.Second,
		RetryMaxAttempts: 3,
		RetryBaseDelay:   500 * time.Millisecond,
		RetryMaxDelay:    4 * time.Second,
		CacheEnabled:     true,
		CacheMaxBytes:    64 << 20,
	}
}

// Read describes how fetched bytes are decoded.
type Read struct {
	table.ReadOptions
	// Format forces csv|tsv|xlsx; empty detects it from the source name.
	Format string
	// Sheet and SheetIndex select a workbook sheet (xlsx only).
	Sheet      string
	SheetIndex int
}

// Loader fetches and decodes sources. A Loader is safe for sequential use;
// the fetch cache is shared by copies made with WithRead.
type Loader struct {
	httpClient       *http.Client
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	cache            *ristretto.Cache
	log              *slog.Logger

	// Read is applied by Load.
	Read Read
	// Stdin backs the "-" source. Defaults to os.Stdin.
	Stdin io.Reader
}

// New returns a Loader. Zero option fields fall back to DefaultOptions.
func New(opt Options) *Loader {
	def := DefaultOptions()
	if opt.HTTPTimeout <= 0 {
		opt.HTTPTimeout = def.HTTPTimeout
	}
	if opt.RetryMaxAttempts <= 0 {
		opt.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if opt.RetryBaseDelay <= 0 {
		opt.RetryBaseDelay = def.RetryBaseDelay
	}
	if opt.RetryMaxDelay <= 0 {
		opt.RetryMaxDelay = def.RetryMaxDelay
	}
	if opt.CacheMaxBytes <= 0 {
		opt.CacheMaxBytes = def.CacheMaxBytes
	}
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Loader{
		httpClient:       &http.Client{Timeout: opt.HTTPTimeout},
		retryMaxAttempts: opt.RetryMaxAttempts,
		retryBaseDelay:   opt.RetryBaseDelay,
		retryMaxDelay:    opt.RetryMaxDelay,
		log:              log,
		Stdin:            os.Stdin,
	}
	if opt.CacheEnabled {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e4,
			MaxCost:     opt.CacheMaxBytes,
			BufferItems: 64,
		})
		if err != nil {
			log.Warn("fetch cache disabled", "err", err)
		} else {
			l.cache = cache
		}
	}
	return l
}

// WithRead returns a shallow copy of l that decodes with r.
func (l *Loader) WithRead(r Read) *Loader {
	cp := *l
	cp.Read = r
	return &cp
}

// Load fetches source and decodes it with l.Read.
func (l *Loader) Load(ctx context.Context, source string) (*table.Table, error) {
	data, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	t, err := l.decode(source, data)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	l.log.Debug("loaded table", "source", source, "rows", t.Len(), "columns", len(t.Columns()))
	return t, nil
}

func (l *Loader) decode(source string, data []byte) (*table.Table, error) {
	r := l.Read
	format := strings.ToLower(strings.TrimSpace(r.Format))
	if format == "" {
		format = detectFormat(source)
	}
	switch format {
	case "xlsx":
		return table.ReadXLSX(data, r.Sheet, r.SheetIndex, r.ReadOptions)
	case "tsv":
		if r.Delimiter == 0 {
			r.Delimiter = '\t'
		}
		return table.ReadCSV(bytes.NewReader(data), r.ReadOptions)
	case "csv":
		return table.ReadCSV(bytes.NewReader(data), r.ReadOptions)
	default:
		return nil, fmt.Errorf("unsupported format %q (use csv|tsv|xlsx)", format)
	}
}

// detectFormat looks at the extension of a path or URL path.
func detectFormat(source string) string {
	name := source
	if isURL(source) {
		if u, err := url.Parse(source); err == nil {
			name = u.Path
		}
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		return "xlsx"
	case ".tsv", ".tab":
		return "tsv"
	default:
		return "csv"
	}
}

func isURL(s string) bool {
	ls := strings.ToLower(s)
	return strings.HasPrefix(ls, "http://") || strings.HasPrefix(ls, "https://")
}

// Fetch returns the raw bytes of source. URLs are retried on network errors,
// 429 and 5xx responses with exponential backoff and cached per process.
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case source == "":
		return nil, &FetchError{Err: errors.New("no source given")}
	case source == "-":
		b, err := io.ReadAll(io.LimitReader(l.Stdin, maxBodyBytes))
		if err != nil {
			return nil, &FetchError{Source: "stdin", Err: err}
		}
		return b, nil
	case !isURL(source):
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, &FetchError{Source: source, Err: err}
		}
		return b, nil
	}

	if l.cache != nil {
		if v, ok := l.cache.Get(source); ok {
			l.log.Debug("fetch cache hit", "url", source)
			return v.([]byte), nil
		}
	}
	b, err := l.fetchURL(ctx, source)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		l.cache.Set(source, b, int64(len(b)))
	}
	return b, nil
}

func (l *Loader) fetchURL(ctx context.Context, source string) ([]byte, error) {
	maxAttempts := l.retryMaxAttempts
	backoff := l.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, &FetchError{Source: source, Err: ctx.Err()}
		}
		l.log.Debug("fetch", "url", source, "attempt", attempt)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, &FetchError{Source: source, Err: fmt.Errorf("build request: %w", err)}
		}
		req.Header.Set("User-Agent", "chartprep-cli")

		resp, err := l.httpClient.Do(req)
		if err != nil {
			lastErr = &FetchError{Source: source, Err: err}
			if isRetryableNetErr(err) && attempt < maxAttempts {
				if err := l.sleep(ctx, l.capDelay(withJitter(backoff))); err != nil {
					return nil, &FetchError{Source: source, Err: err}
				}
				backoff *= 2
				continue
			}
			return nil, lastErr
		}

		body, retryAfter, err := readResponse(resp)
		if err == nil {
			return body, nil
		}
		lastErr = &FetchError{Source: source, Status: resp.StatusCode, Err: err}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable || attempt == maxAttempts {
			return nil, lastErr
		}
		wait := l.capDelay(withJitter(backoff))
		if retryAfter > 0 {
			wait = retryAfter
		}
		l.log.Debug("fetch retry", "url", source, "status", resp.StatusCode, "wait", wait)
		if err := l.sleep(ctx, wait); err != nil {
			return nil, &FetchError{Source: source, Err: err}
		}
		backoff *= 2
	}
	return nil, lastErr
}

// readResponse drains resp. A non-2xx status is returned as an error carrying
// the first few KiB of the body.
func readResponse(resp *http.Response) ([]byte, time.Duration, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		var ra time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := parseRetryAfterSeconds(v); err == nil && secs > 0 {
				ra = time.Duration(secs) * time.Second
			}
		}
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, ra, errors.New(msg)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return b, 0, nil
}

func (l *Loader) capDelay(d time.Duration) time.Duration {
	if l.retryMaxDelay > 0 && d > l.retryMaxDelay {
		return l.retryMaxDelay
	}
	return d
}

func (l *Loader) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// parseRetryAfterSeconds interprets a Retry-After header as seconds or an
// HTTP date.
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
	if out := time.Duration(float64(d) * f); out > 0 {
		return out
	}
	return d
}
