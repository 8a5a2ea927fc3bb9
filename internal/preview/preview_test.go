package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink-geo/internal/model"
)

const samplePage = `<!doctype html>
<html><head>
<title>ignored</title>
<meta property="og:title" content="Example Domain">
<meta name="og:description" content=" An example page ">
<meta property="og:image" content="/img/logo.png" />
<meta property="og:title" content="second title">
</head>
<body><meta property="og:site_name" content="body tags are ignored"></body></html>`

func TestParseOpenGraph(t *testing.T) {
	tags, err := ParseOpenGraph(strings.NewReader(samplePage))
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", tags["og:title"])
	assert.Equal(t, "An example page", tags["og:description"])
	assert.Equal(t, "/img/logo.png", tags["og:image"])
	assert.NotContains(t, tags, "og:site_name")
}

func TestParseOpenGraphNoHead(t *testing.T) {
	tags, err := ParseOpenGraph(strings.NewReader("plain text, not html"))
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func newTestFetcher(t *testing.T) (*Fetcher, string) {
	dir := t.TempDir()
	f := NewFetcher(Options{
		Timeout:       time.Second,
		AssetDir:      dir,
		URLPrefix:     "/uploads/",
		MaxImageBytes: 1024,
	})
	f.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f, dir
}

func TestFetchCachesImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(samplePage))
		case "/img/logo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, dir := newTestFetcher(t)
	meta := f.Fetch(context.Background(), srv.URL+"/page")

	assert.Equal(t, "Example Domain", meta.Title)
	assert.Equal(t, "An example page", meta.Description)
	require.True(t, strings.HasPrefix(meta.Image, "/uploads/1700000000000-"), meta.Image)
	assert.True(t, strings.HasSuffix(meta.Image, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(meta.Image, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, png, saved)
}

func TestFetchImageTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/big.jpg" {
			_, _ = w.Write(make([]byte, 4096))
			return
		}
		_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="Big"><meta property="og:image" content="big.jpg"></head></html>`))
	}))
	defer srv.Close()

	f, dir := newTestFetcher(t)
	meta := f.Fetch(context.Background(), srv.URL+"/")
	assert.Equal(t, "Big", meta.Title)
	assert.Empty(t, meta.Image)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestFetchTruncatesLongMetadata(t *testing.T) {
	title := strings.Repeat("标", model.MaxOgTitleLen+88)
	desc := strings.Repeat("d", model.MaxOgDescriptionLen+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="` + title +
			`"><meta property="og:description" content="` + desc + `"></head></html>`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t)
	meta := f.Fetch(context.Background(), srv.URL)
	assert.Equal(t, model.MaxOgTitleLen, utf8.RuneCountInString(meta.Title))
	assert.True(t, strings.HasPrefix(title, meta.Title))
	assert.Len(t, meta.Description, model.MaxOgDescriptionLen)
}

func TestFetchFailuresYieldEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(t)
	assert.Equal(t, Metadata{}, f.Fetch(context.Background(), srv.URL))
	assert.Equal(t, Metadata{}, f.Fetch(context.Background(), "not a url"))
	assert.Equal(t, Metadata{}, f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable"))
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, ".png", imageExt("https://cdn.example.com/a/b.PNG?x=1", ""))
	assert.Equal(t, ".jpg", imageExt("https://cdn.example.com/image", "image/jpeg"))
	assert.Equal(t, ".webp", imageExt("https://cdn.example.com/image", "image/webp"))
	assert.Equal(t, ".jpg", imageExt("https://cdn.example.com/image.php", "application/octet-stream"))
}
