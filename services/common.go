package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// ReadFileFromUrl downloads the body of url, bypassing intermediate caches.
func ReadFileFromUrl(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = newHTTPClient(0)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", url, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return content, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	body, err := ReadFileFromUrl(ctx, client, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

// CleanAIResponseText strips a markdown code fence (``` or ```json) around
// a model reply and returns the inner text.
func CleanAIResponseText(text string) string {
	clean := strings.TrimSpace(text)
	start := strings.Index(clean, "```")
	if start < 0 {
		return clean
	}
	rest := clean[start+3:]
	if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
		rest = rest[4:]
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
