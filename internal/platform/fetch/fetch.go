package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lnco/artifact-service/internal/platform/logger"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxRedirects = 5
	// maxBodyBytes bounds how much of a remote resource we will buffer.
	maxBodyBytes = 32 << 20
)

// Client fetches remote resources with a bounded timeout and redirect count.
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
}

func NewClient(log *logger.Logger, timeout time.Duration, maxRedirects int) Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}
	return &client{
		log: log.With("client", "FetchClient"),
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

func (c *client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed fetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: status=%d url=%s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed reading fetch body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("fetch body exceeds %d bytes: url=%s", maxBodyBytes, url)
	}
	return body, nil
}
