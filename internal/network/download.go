package network

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"
)

// DownloadRequest describes a single, optionally resumed, file download.
type DownloadRequest struct {
	URL        string
	Path       string // destination file, appended to when Offset > 0
	Offset     int64  // bytes already present in Path
	TotalBytes int64  // known total size, 0 when unknown
	Limiter    *rate.Limiter
	Progress   func(downloaded, total int64)
}

// DownloadResult reports how far a download got, terminal or not.
type DownloadResult struct {
	BytesDownloaded int64
	TotalBytes      int64
	Resumed         bool
}

// Download streams req.URL into req.Path, resuming with an HTTP Range request
// when req.Offset matches the bytes already on disk. On error the partial file
// is kept so a later call can resume. Cancellation arrives via the request
// context and surfaces as a read error mid-stream.
func Download(ctx context.Context, client *http.Client, req *DownloadRequest) (*DownloadResult, error) {
	result := &DownloadResult{
		BytesDownloaded: req.Offset,
		TotalBytes:      req.TotalBytes,
	}

	var out *os.File
	startByte := int64(0)

	if req.Offset > 0 {
		if info, err := os.Stat(req.Path); err == nil && info.Size() == req.Offset {
			startByte = req.Offset
			result.Resumed = true

			f, err := os.OpenFile(req.Path, os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return result, fmt.Errorf("failed to open partial file: %w", err)
			}
			out = f
		} else {
			// Size mismatch, start over
			os.Remove(req.Path)
			result.BytesDownloaded = 0
		}
	}

	if out == nil {
		if err := os.MkdirAll(filepath.Dir(req.Path), 0755); err != nil {
			return result, fmt.Errorf("failed to create download directory: %w", err)
		}
		f, err := os.Create(req.Path)
		if err != nil {
			return result, fmt.Errorf("failed to create download file: %w", err)
		}
		out = f
	}
	defer out.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	if startByte > 0 {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-", startByte))
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if startByte > 0 {
		if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
			return result, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusOK {
			// Server ignored the Range header; restart from scratch
			if err := out.Truncate(0); err != nil {
				return result, fmt.Errorf("failed to truncate partial file: %w", err)
			}
			if _, err := out.Seek(0, io.SeekStart); err != nil {
				return result, fmt.Errorf("failed to rewind partial file: %w", err)
			}
			startByte = 0
			result.BytesDownloaded = 0
			result.Resumed = false
		}
	} else if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	if result.TotalBytes == 0 && resp.ContentLength > 0 {
		result.TotalBytes = resp.ContentLength + startByte
	}

	var body io.Reader = resp.Body
	if req.Limiter != nil {
		body = &limitedReader{r: resp.Body, limiter: req.Limiter, ctx: ctx}
	}

	writer := bufio.NewWriterSize(out, 256*1024)
	buf := make([]byte, 64*1024)
	downloaded := startByte

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := writer.Write(buf[:n]); writeErr != nil {
				writer.Flush()
				return result, fmt.Errorf("failed to write download: %w", writeErr)
			}
			downloaded += int64(n)
			result.BytesDownloaded = downloaded

			if req.Progress != nil {
				req.Progress(downloaded, result.TotalBytes)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// Keep the partial file so the transfer can resume
			writer.Flush()
			return result, fmt.Errorf("error reading response: %w", readErr)
		}
	}

	if err := writer.Flush(); err != nil {
		return result, fmt.Errorf("failed to flush download: %w", err)
	}

	if result.TotalBytes > 0 && downloaded < result.TotalBytes {
		return result, fmt.Errorf("download incomplete: %d of %d bytes", downloaded, result.TotalBytes)
	}

	return result, nil
}

// limitedReader throttles reads through a token bucket. Burst must cover the
// read buffer size or WaitN blocks forever.
type limitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if n > 0 {
		if waitErr := l.limiter.WaitN(l.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// NewBandwidthLimiter builds a token bucket for the given bytes/sec cap.
// Returns nil for a zero cap (unlimited).
func NewBandwidthLimiter(bytesPerSec int) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	burst := bytesPerSec
	if burst < 128*1024 {
		burst = 128 * 1024
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}
