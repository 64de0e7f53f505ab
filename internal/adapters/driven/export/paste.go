package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

const (
	// DefaultPasteEndpoint is the paste service the snapshots go to.
	DefaultPasteEndpoint = "https://paste.hep.gg"

	// DefaultPasteTimeout bounds one upload.
	DefaultPasteTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// Ensure PasteExporter implements the interface.
var _ driven.SnapshotExporter = (*PasteExporter)(nil)

// PasteExporter uploads snapshots to a paste service.
type PasteExporter struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// NewPasteExporter creates an exporter for endpoint. client may be nil.
func NewPasteExporter(endpoint, userAgent string, client *http.Client) (*PasteExporter, error) {
	if endpoint == "" {
		endpoint = DefaultPasteEndpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: paste endpoint %q", domain.ErrInvalidInput, endpoint)
	}

	if client == nil {
		client = &http.Client{Timeout: DefaultPasteTimeout}
	}

	return &PasteExporter{endpoint: endpoint, userAgent: userAgent, client: client}, nil
}

type pasteResponse struct {
	Key string `json:"key"`
}

// Export uploads data and returns the URL of the created document.
func (p *PasteExporter) Export(ctx context.Context, data domain.SyncData) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/documents", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &domain.TransportError{Op: "upload snapshot", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &domain.TransportError{Op: "upload snapshot", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.TransportError{
			Op:         "upload snapshot",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("paste service returned %s", resp.Status),
		}
	}

	var out pasteResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &domain.ShapeError{Op: "upload snapshot", Detail: "undecodable response", Err: err}
	}
	if out.Key == "" {
		return "", &domain.ShapeError{Op: "upload snapshot", Detail: "missing document key"}
	}

	location := p.endpoint + "/" + out.Key
	logger.Debug("Uploaded snapshot (%d bytes) to %s", len(body), location)
	return location, nil
}
