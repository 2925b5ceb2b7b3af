package metadata

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
	apperrors "github.com/tapedeck/tapedeck-go/internal/errors"
	"github.com/tapedeck/tapedeck-go/internal/network"
)

// ArtworkFetcher resolves show artwork through the catalog and serves it
// from a two-level cache: in-memory per process, JPEG files on disk across
// restarts. Fetched images are capped to the configured square size.
type ArtworkFetcher struct {
	cat      catalog.Client
	client   *http.Client
	cacheDir string
	size     int
	logger   *zap.Logger

	mu  sync.Mutex
	mem map[string][]byte
}

// NewArtworkFetcher builds a fetcher caching under cacheDir. size is the
// maximum edge length in pixels; zero disables resizing.
func NewArtworkFetcher(cat catalog.Client, cacheDir string, size int, logger *zap.Logger) (*ArtworkFetcher, error) {
	if cacheDir == "" {
		return nil, apperrors.NewValidationError("artwork cache directory cannot be empty")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artwork cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtworkFetcher{
		cat:      cat,
		client:   network.GetDefaultClient(),
		cacheDir: cacheDir,
		size:     size,
		logger:   logger,
		mem:      make(map[string][]byte),
	}, nil
}

// Artwork returns the show's cover image as JPEG bytes.
func (f *ArtworkFetcher) Artwork(ctx context.Context, showID string) ([]byte, error) {
	f.mu.Lock()
	if data, ok := f.mem[showID]; ok {
		f.mu.Unlock()
		return data, nil
	}
	f.mu.Unlock()

	cachePath := f.cachePath(showID)
	if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 {
		f.remember(showID, data)
		return data, nil
	}

	show, err := f.cat.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if show.ArtworkURL == "" {
		return nil, apperrors.NewNoRecordingFound(showID)
	}

	var data []byte
	err = apperrors.RetryWithBackoff(ctx, apperrors.DefaultRetryConfig(), func() error {
		var fetchErr error
		data, fetchErr = f.fetch(ctx, show.ArtworkURL)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if jpegData, err := f.normalize(data); err == nil {
		data = jpegData
	} else {
		f.logger.Debug("Artwork normalize failed, keeping original",
			zap.String("show", showID), zap.Error(err))
	}

	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		f.logger.Warn("Failed to cache artwork",
			zap.String("show", showID), zap.Error(err))
	}
	f.remember(showID, data)
	return data, nil
}

func (f *ArtworkFetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid artwork url")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("artwork download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("artwork download failed with status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read artwork", err)
	}
	return data, nil
}

// normalize decodes, downsizes to the configured edge and re-encodes as JPEG.
func (f *ArtworkFetcher) normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	if f.size > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > f.size || bounds.Dy() > f.size {
			if bounds.Dx() >= bounds.Dy() {
				img = resize.Resize(uint(f.size), 0, img, resize.Lanczos3)
			} else {
				img = resize.Resize(0, uint(f.size), img, resize.Lanczos3)
			}
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode artwork: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *ArtworkFetcher) remember(showID string, data []byte) {
	f.mu.Lock()
	f.mem[showID] = data
	f.mu.Unlock()
}

func (f *ArtworkFetcher) cachePath(showID string) string {
	hash := md5.Sum([]byte(fmt.Sprintf("%s_%d", showID, f.size)))
	return filepath.Join(f.cacheDir, hex.EncodeToString(hash[:])+".jpg")
}
