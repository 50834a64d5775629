package httpinfra

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsl/edsync/internal/core/settings"
)

func TestShapeURL(t *testing.T) {
	tests := []struct {
		name     string
		location string
		expected string
		wantErr  bool
	}{
		{name: "GistPage_ShouldGetRawSuffix", location: "https://gist.github.com/alice/0123abcd", expected: "https://gist.github.com/alice/0123abcd/raw"},
		{name: "GistTrailingSlash_ShouldGetRawSuffix", location: "https://gist.github.com/alice/0123abcd/", expected: "https://gist.github.com/alice/0123abcd/raw"},
		{name: "GistAlreadyRaw_ShouldStay", location: "https://gist.github.com/alice/0123abcd/raw", expected: "https://gist.github.com/alice/0123abcd/raw"},
		{name: "GistRevisionFile_ShouldStay", location: "https://gist.github.com/alice/0123abcd/raw/rev/settings.json", expected: "https://gist.github.com/alice/0123abcd/raw/rev/settings.json"},
		{name: "OtherHost_ShouldStay", location: "https://example.com/settings.json", expected: "https://example.com/settings.json"},
		{name: "Whitespace_ShouldBeTrimmed", location: "  http://example.com/a  ", expected: "http://example.com/a"},
		{name: "UnsupportedScheme_ShouldFail", location: "ftp://example.com/a", wantErr: true},
		{name: "NoHost_ShouldFail", location: "https:///a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShapeURL(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		expectKind settings.Kind
		expectKeys []string
	}{
		{name: "Object_ShouldParseInOrder", status: 200, body: `{"editor.tabSize": 4, "editor.formatOnSave": true}`, expectKeys: []string{"editor.tabSize", "editor.formatOnSave"}},
		{name: "Array_ShouldBeContentError", status: 200, body: `[1,2]`, expectKind: settings.KindContent},
		{name: "NotJSON_ShouldBeContentError", status: 200, body: `<html>`, expectKind: settings.KindContent},
		{name: "NotFound_ShouldBeTransportError", status: 404, body: `{}`, expectKind: settings.KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "edsync-test", r.Header.Get("User-Agent"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			fetcher := NewFetcher(NewStdHttpRequester(server.Client(), 0, nil), "edsync-test", nil)
			doc, err := fetcher.Fetch(context.Background(), server.URL+"/settings.json")

			if tt.expectKind != settings.KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.expectKind, settings.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectKeys, doc.Keys())
		})
	}
}

func TestFetcher_SendsConfiguredHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "edsync", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"a": 1}`))
	}))
	defer server.Close()

	fetcher := NewFetcher(NewStdHttpRequester(server.Client(), 0, nil), "edsync", map[string]string{
		"Authorization": "token abc",
		"Accept":        "application/json",
	})
	doc, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, doc.Keys())
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"a": 1}`))
	}))
	defer server.Close()

	fetcher := NewFetcher(NewStdHttpRequester(server.Client(), 0, NewBackoffRetry(3, time.Millisecond)), "", nil)
	doc, err := fetcher.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcher_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewFetcher(NewStdHttpRequester(server.Client(), 0, NewBackoffRetry(2, time.Millisecond)), "", nil)
	_, err := fetcher.Fetch(context.Background(), server.URL)

	assert.True(t, settings.IsKind(err, settings.KindTransport))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcher_UnknownHostIsHostNotFound(t *testing.T) {
	var dials int32
	client := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			atomic.AddInt32(&dials, 1)
			return nil, &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}
		},
	}}

	fetcher := NewFetcher(NewStdHttpRequester(client, 0, NewBackoffRetry(3, time.Millisecond)), "", nil)
	_, err := fetcher.Fetch(context.Background(), "https://nowhere.invalid/settings.json")

	require.Error(t, err)
	assert.Equal(t, settings.KindHostNotFound, settings.KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials), "unknown hosts are not retried")
}

func TestBackoffRetry_ShouldRetry(t *testing.T) {
	policy := NewBackoffRetry(2, 10*time.Millisecond)

	retry, delay := policy.ShouldRetry(500, nil, 0)
	assert.True(t, retry)
	assert.Equal(t, 10*time.Millisecond, delay)

	retry, delay = policy.ShouldRetry(0, errors.New("connection reset"), 1)
	assert.True(t, retry)
	assert.Equal(t, 20*time.Millisecond, delay)

	retry, _ = policy.ShouldRetry(500, nil, 2)
	assert.False(t, retry)

	retry, _ = policy.ShouldRetry(404, nil, 0)
	assert.False(t, retry)

	retry, _ = policy.ShouldRetry(429, nil, 0)
	assert.True(t, retry)
}

func TestRouter_DispatchesByScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"files.eol": "\n"}`), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"from": "http"}`))
	}))
	defer server.Close()

	router := NewRouter(NewFetcher(NewStdHttpRequester(server.Client(), 0, nil), "", nil), FileFetcher{})

	doc, err := router.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, doc.Has("from"))

	doc, err = router.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.True(t, doc.Has("files.eol"))

	doc, err = router.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, doc.Has("files.eol"))

	_, err = router.Fetch(context.Background(), filepath.Join(dir, "missing.json"))
	assert.True(t, settings.IsKind(err, settings.KindTransport))
}
