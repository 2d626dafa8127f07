package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

const pollsCSV = "candidate,pct\nClinton,44\nTrump,40\n"

func fastOptions() Options {
	return Options{
		HTTPTimeout:      2 * time.Second,
		RetryMaxAttempts: 3,
		RetryBaseDelay:   time.Millisecond,
		RetryMaxDelay:    5 * time.Millisecond,
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chartprep-cli", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(pollsCSV))
	}))
	defer srv.Close()

	tab, err := New(fastOptions()).Load(context.Background(), srv.URL+"/polls.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate", "pct"}, tab.Columns())
	assert.Equal(t, 2, tab.Len())
}

func TestLoadRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(pollsCSV))
	}))
	defer srv.Close()

	tab, err := New(fastOptions()).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, tab.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLoadDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such dataset", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(fastOptions()).Load(context.Background(), srv.URL+"/missing.csv")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Contains(t, fe.Error(), "no such dataset")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLoadGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	opt := fastOptions()
	opt.RetryMaxAttempts = 2
	_, err := New(opt).Load(context.Background(), srv.URL)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusBadGateway, fe.Status)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLoadHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	opt := fastOptions()
	opt.RetryBaseDelay = time.Hour
	opt.RetryMaxDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(opt).Load(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLoadWithoutCacheRefetches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(pollsCSV))
	}))
	defer srv.Close()

	l := New(fastOptions())
	for i := 0; i < 2; i++ {
		_, err := l.Load(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLoadWithCacheReturnsSameBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pollsCSV))
	}))
	defer srv.Close()

	opt := fastOptions()
	opt.CacheEnabled = true
	l := New(opt)
	first, err := l.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	second, err := l.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadLocalFiles(t *testing.T) {
	dir := t.TempDir()
	tsv := filepath.Join(dir, "religions.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("religion\tadherents\nHindus\t1161440000\n"), 0o644))

	tab, err := New(fastOptions()).Load(context.Background(), tsv)
	require.NoError(t, err)
	assert.Equal(t, []string{"religion", "adherents"}, tab.Columns())

	_, err = New(fastOptions()).Load(context.Background(), filepath.Join(dir, "missing.csv"))
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadStdinWithNames(t *testing.T) {
	l := New(fastOptions()).WithRead(Read{ReadOptions: table.ReadOptions{
		NoHeader: true,
		Names:    []string{"party", "seats"},
	}})
	l.Stdin = strings.NewReader("Labour,411\nConservative,121\n")

	tab, err := l.Load(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, []string{"party", "seats"}, tab.Columns())
	assert.Equal(t, 2, tab.Len())
}

func TestLoadParseFailureIsFetchError(t *testing.T) {
	l := New(fastOptions()).WithRead(Read{ReadOptions: table.ReadOptions{
		Kinds: map[string]table.Kind{"candidate": table.KindNumber},
	}})
	l.Stdin = strings.NewReader(pollsCSV)

	_, err := l.Load(context.Background(), "-")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, errors.Is(err, table.ErrSchema))

	l = New(fastOptions()).WithRead(Read{Format: "parquet"})
	l.Stdin = strings.NewReader(pollsCSV)
	_, err = l.Load(context.Background(), "-")
	require.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	for in, want := range map[string]string{
		"data/polls.csv":                  "csv",
		"data/polls.TSV":                  "tsv",
		"book.xlsx":                       "xlsx",
		"https://example.org/x.xlsx?dl=1": "xlsx",
		"https://example.org/export":      "csv",
	} {
		assert.Equal(t, want, detectFormat(in), in)
	}
}
