package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_WritesDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fits-bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "mastDownload", "TESS", "f.fits")
	f := NewHTTPFetcher(5 * time.Second)
	require.NoError(t, f.Fetch(context.Background(), srv.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fits-bytes", string(data))
}

func TestHTTPFetcher_NonOKLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "f.fits")
	f := NewHTTPFetcher(5 * time.Second)

	err := f.Fetch(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file should exist after a failed fetch")

	// No temp leftovers either.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHTTPFetcher_TruncatedBodyCleansUpPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "f.fits")
	f := NewHTTPFetcher(5 * time.Second)

	err := f.Fetch(context.Background(), srv.URL, dest)
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "partial files must be removed")
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://stpubdata/tess/public/tid/f.fits")
	require.NoError(t, err)
	assert.Equal(t, "stpubdata", bucket)
	assert.Equal(t, "tess/public/tid/f.fits", key)

	_, _, err = ParseS3URI("https://example.com/f.fits")
	require.Error(t, err)

	_, _, err = ParseS3URI("s3://bucketonly")
	require.Error(t, err)
}

type fakeS3 struct {
	body string
	err  error

	gotBucket string
	gotKey    string
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotBucket = *params.Bucket
	f.gotKey = *params.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Fetcher_FetchesObject(t *testing.T) {
	api := &fakeS3{body: "cloud-bytes"}
	f := NewS3FetcherFromAPI(api)

	dest := filepath.Join(t.TempDir(), "f.fits")
	require.NoError(t, f.Fetch(context.Background(), "s3://stpubdata/tess/public/f.fits", dest))

	assert.Equal(t, "stpubdata", api.gotBucket)
	assert.Equal(t, "tess/public/f.fits", api.gotKey)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "cloud-bytes", string(data))
}

func TestS3Fetcher_ErrorLeavesNoFile(t *testing.T) {
	api := &fakeS3{err: errors.New("access denied")}
	f := NewS3FetcherFromAPI(api)

	dir := t.TempDir()
	err := f.Fetch(context.Background(), "s3://stpubdata/k/f.fits", filepath.Join(dir, "f.fits"))
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRouter_DispatchesOnScheme(t *testing.T) {
	archive := &recordingFetcher{}
	cloud := &recordingFetcher{}
	r := Router{Archive: archive, Cloud: cloud}

	require.NoError(t, r.Fetch(context.Background(), "https://mast.stsci.edu/f.fits", "/tmp/a"))
	require.NoError(t, r.Fetch(context.Background(), "s3://stpubdata/f.fits", "/tmp/b"))

	assert.Equal(t, []string{"https://mast.stsci.edu/f.fits"}, archive.sources)
	assert.Equal(t, []string{"s3://stpubdata/f.fits"}, cloud.sources)
}

func TestRouter_MissingFetcher(t *testing.T) {
	r := Router{}
	require.Error(t, r.Fetch(context.Background(), "s3://b/k", "/tmp/x"))
	require.Error(t, r.Fetch(context.Background(), "https://b/k", "/tmp/x"))
}

type recordingFetcher struct {
	sources []string
	err     error
}

func (r *recordingFetcher) Fetch(ctx context.Context, source, dest string) error {
	r.sources = append(r.sources, source)
	return r.err
}
