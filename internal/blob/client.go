package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"

	"tradejournal/internal/config"
)

// Client uploads screenshot files to the external blob store and returns
// the public URL the store assigns them.
type Client struct {
	http *resty.Client
}

type uploadResponse struct {
	URL string `json:"url"`
}

func New(cfg config.BlobConfig) *Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2)
	return &Client{http: c}
}

// Configured reports whether a blob store endpoint is set. Uploads fail
// fast when it is not.
func (c *Client) Configured() bool {
	return c.http.BaseURL != ""
}

func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("blob store is not configured")
	}
	var out uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, content).
		SetResult(&out).
		Post("/upload")
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: blob store returned %s", filename, resp.Status())
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload %s: blob store returned no url", filename)
	}
	return out.URL, nil
}
