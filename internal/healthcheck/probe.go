package healthcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const probeBodyLimit = 64 << 10

// Prober checks a running service's /health endpoint.
type Prober struct {
	client *retryablehttp.Client
}

// NewProber builds a Prober with a per-attempt timeout and a retry budget for
// connection errors and 5xx responses.
func NewProber(timeout time.Duration, retries int) *Prober {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.Logger = nil
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &Prober{client: client}
}

// Probe fetches url and returns the decoded status. It fails unless the
// response is 200 with status "healthy".
func (p *Prober) Probe(ctx context.Context, url string) (Status, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Status{}, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("probe %s: unexpected status: %s", url, resp.Status)
	}

	var status Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, probeBodyLimit)).Decode(&status); err != nil {
		return Status{}, fmt.Errorf("decode probe response: %w", err)
	}
	if status.Status != StatusHealthy {
		return status, fmt.Errorf("probe %s: service reported %q", url, status.Status)
	}
	return status, nil
}
