package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	client, err := NewHttpClient("", 10*time.Second)
	require.NoError(t, err)
	return NewFetcher(client, zap.NewNop())
}

func TestFetcher_Download(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/paper.pdf":
			_, _ = w.Write([]byte("%PDF-1.4 body"))
		case "/gone.pdf":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f := newTestFetcher(t)

	testCases := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"OK", "/paper.pdf", "%PDF-1.4 body", false},
		{"NotFound", "/gone.pdf", "", true},
		{"ServerError", "/boom", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := f.Download(context.Background(), srv.URL+tc.path)
			assert.Equal(t, DefaultUserAgent, gotUA)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(data))
		})
	}
}

func TestFetcher_DownloadSizeLimit(t *testing.T) {
	body := []byte("%PDF-1.4 0123456789")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client, err := NewHttpClient("", 10*time.Second)
	require.NoError(t, err)

	exact := NewFetcher(client, zap.NewNop(), WithMaxDownloadBytes(int64(len(body))))
	data, err := exact.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	small := NewFetcher(client, zap.NewNop(), WithMaxDownloadBytes(int64(len(body)-1)))
	data, err = small.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
	assert.Nil(t, data)
}

func TestFetcher_DownloadUnreachable(t *testing.T) {
	_, err := newTestFetcher(t).Download(context.Background(), "http://bad.invalid/x.pdf")
	assert.Error(t, err)
}

func TestFetcher_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))

	f := newTestFetcher(t)
	data, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	_, err = f.ReadFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewHttpClient_InvalidProxy(t *testing.T) {
	_, err := NewHttpClient("://not a url", time.Second)
	assert.Error(t, err)
}

func TestArchiver_FetchReusesExistingFile(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			hits++
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 archived"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	client, err := NewHttpClient("", 10*time.Second)
	require.NoError(t, err)
	a, err := NewArchiver(dir, client, zap.NewNop())
	require.NoError(t, err)

	path, err := a.Fetch(context.Background(), srv.URL+"/pdf/2401.00001v1.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2401.00001v1.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 archived", string(data))

	again, err := a.Fetch(context.Background(), srv.URL+"/pdf/2401.00001v1.pdf")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, hits)

	a.Discard(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
