// Package storage is the HTTP client for the external media host holding
// highlight clips and report files. Endpoints accept multipart form data and
// answer with a {success, error} envelope.
//
// Requests are rate-limited via a token bucket and carry bearer auth.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client is the shared HTTP client for all media endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a media storage client with rate limiting.
func NewClient(baseURL, token string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// envelope is the standard media host response shape.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ProgressFunc receives cumulative bytes sent and the total size. total is
// -1 when unknown.
type ProgressFunc func(sent, total int64)

// Upload streams one file as multipart form data and returns the hosted URL.
// onProgress, when non-nil, is called as the body is consumed.
func (c *Client) Upload(ctx context.Context, playerID int64, filename string, size int64, src io.Reader, onProgress ProgressFunc) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(mw, playerID, filename, src)
		mw.Close()
		pw.CloseWithError(err)
	}()

	body := io.Reader(pr)
	if onProgress != nil {
		body = &progressReader{r: pr, total: size, report: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	env, err := c.do(req, "/upload")
	if err != nil {
		return "", err
	}
	return env.URL, nil
}

// Delete removes a hosted file.
func (c *Client) Delete(ctx context.Context, playerID int64, fileURL string) error {
	return c.form(ctx, "/delete", url.Values{
		"player_id": {strconv.FormatInt(playerID, 10)},
		"url":       {fileURL},
	})
}

// Rename changes a hosted file's display name.
func (c *Client) Rename(ctx context.Context, playerID int64, fileURL, newName string) error {
	return c.form(ctx, "/rename", url.Values{
		"player_id": {strconv.FormatInt(playerID, 10)},
		"url":       {fileURL},
		"name":      {newName},
	})
}

func (c *Client) form(ctx context.Context, path string, values url.Values) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	_, err = c.do(req, path)
	return err
}

func (c *Client) do(req *http.Request, path string) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media host %s returned %d: %s", path, resp.StatusCode, truncate(raw, 200))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = "unknown media host error"
		}
		return nil, fmt.Errorf("media host %s: %s", path, env.Error)
	}
	return &env, nil
}

func writeUploadForm(mw *multipart.Writer, playerID int64, filename string, src io.Reader) error {
	if err := mw.WriteField("player_id", strconv.FormatInt(playerID, 10)); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

// progressReader reports cumulative bytes as the HTTP transport consumes
// the multipart body.
type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
