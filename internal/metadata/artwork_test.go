package metadata

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
)

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestArtworkFetcher_FetchResizeAndCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(testImage(t, 10, 10))
	}))
	defer server.Close()

	cat := &stubCatalog{show: &catalog.Show{
		ID:         "1977-05-08",
		ArtworkURL: server.URL + "/art.png",
	}}

	fetcher, err := NewArtworkFetcher(cat, t.TempDir(), 4, nil)
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	data, err := fetcher.Artwork(context.Background(), "1977-05-08")
	if err != nil {
		t.Fatalf("Failed to fetch artwork: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Returned artwork does not decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("Expected jpeg output, got %s", format)
	}
	if b := img.Bounds(); b.Dx() > 4 || b.Dy() > 4 {
		t.Errorf("Expected artwork capped at 4px, got %dx%d", b.Dx(), b.Dy())
	}

	// Second request must come from cache.
	if _, err := fetcher.Artwork(context.Background(), "1977-05-08"); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", got)
	}
}

func TestArtworkFetcher_DiskCacheSurvivesRestart(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(testImage(t, 6, 6))
	}))
	defer server.Close()

	cat := &stubCatalog{show: &catalog.Show{
		ID:         "1972-08-27",
		ArtworkURL: server.URL + "/art.png",
	}}
	cacheDir := t.TempDir()

	first, err := NewArtworkFetcher(cat, cacheDir, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Artwork(context.Background(), "1972-08-27"); err != nil {
		t.Fatal(err)
	}

	second, err := NewArtworkFetcher(cat, cacheDir, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := second.Artwork(context.Background(), "1972-08-27"); err != nil {
		t.Fatal(err)
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("Expected the disk cache to serve the second fetcher, got %d fetches", got)
	}
}

func TestArtworkFetcher_NoArtworkURL(t *testing.T) {
	cat := &stubCatalog{show: &catalog.Show{ID: "1968-02-14"}}
	fetcher, err := NewArtworkFetcher(cat, t.TempDir(), 600, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fetcher.Artwork(context.Background(), "1968-02-14"); err == nil {
		t.Error("Expected an error for a show without artwork")
	}
}
