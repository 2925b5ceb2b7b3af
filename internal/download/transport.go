package download

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	apperrors "github.com/tapedeck/tapedeck-go/internal/errors"
	"github.com/tapedeck/tapedeck-go/internal/network"
)

// TransferRequest describes one track transfer handed to a Transport.
// ResumeToken is whatever the transport returned from an earlier, interrupted
// attempt; the orchestrator persists it verbatim and never looks inside.
type TransferRequest struct {
	URL         string
	Destination string
	ResumeToken []byte
	Limiter     *rate.Limiter
	Progress    func(downloaded, total int64)
}

// TransferResult reports the outcome of a transfer attempt. ResumeToken is
// non-nil only when the transfer stopped short and can be continued.
type TransferResult struct {
	BytesDownloaded int64
	TotalBytes      int64
	ResumeToken     []byte
}

// Transport performs the byte movement for one track. Start blocks until the
// transfer completes, fails, or ctx is cancelled; on failure or cancellation
// it returns a result carrying resume state alongside the error.
type Transport interface {
	Start(ctx context.Context, req *TransferRequest) (*TransferResult, error)
}

// httpResumeState is the HTTP transport's resume token payload.
type httpResumeState struct {
	Bytes int64 `json:"bytes"`
	Total int64 `json:"total"`
}

// HTTPTransport downloads over plain HTTP(S) with Range-request resumption.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport builds a transport over the given client. A nil client
// selects the shared transfer client, which has no overall timeout so large
// transfers only end via ctx.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = network.GetTransferClient()
	}
	return &HTTPTransport{client: client}
}

// Start implements Transport.
func (t *HTTPTransport) Start(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	var state httpResumeState
	if len(req.ResumeToken) > 0 {
		if err := json.Unmarshal(req.ResumeToken, &state); err != nil {
			// Unreadable token, start the transfer over.
			state = httpResumeState{}
		}
	}

	dlReq := &network.DownloadRequest{
		URL:        req.URL,
		Path:       req.Destination,
		Offset:     state.Bytes,
		TotalBytes: state.Total,
		Limiter:    req.Limiter,
		Progress:   req.Progress,
	}

	dlRes, err := network.Download(ctx, t.client, dlReq)
	result := &TransferResult{
		BytesDownloaded: dlRes.BytesDownloaded,
		TotalBytes:      dlRes.TotalBytes,
	}

	if err != nil {
		result.ResumeToken = encodeResumeState(dlRes.BytesDownloaded, dlRes.TotalBytes)
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, apperrors.NewNetworkError("transfer failed", err)
	}

	return result, nil
}

func encodeResumeState(bytes, total int64) []byte {
	token, err := json.Marshal(httpResumeState{Bytes: bytes, Total: total})
	if err != nil {
		return nil
	}
	return token
}
