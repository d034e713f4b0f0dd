package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/notegraph/notegraph/internal/apperr"
)

const userAgent = "Mozilla/5.0 (compatible; NoteGraph/1.0; +http://notegraph.local)"

var fetchClient = &http.Client{Timeout: 60 * time.Second}

// Fetch retrieves the raw HTML at url. Network failures and non-2xx
// responses surface as Fetch errors.
func Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.Validation, fmt.Errorf("ingest: build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := fetchClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.Fetch, fmt.Errorf("ingest: fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.New(apperr.Fetch, "ingest: fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.Fetch, fmt.Errorf("ingest: read body: %w", err))
	}
	return string(body), nil
}
