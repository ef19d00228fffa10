//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// GetGatewayURL returns the server under test, from PINNER_E2E_URL or localhost.
func GetGatewayURL() string {
	if v := strings.TrimSpace(os.Getenv("PINNER_E2E_URL")); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:3000"
}

// SkipIfMissingGateway skips the test if the server is not reachable
func SkipIfMissingGateway(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if !IsGatewayReady(ctx) {
		t.Skip("Gateway not accessible; tests skipped")
	}
}

// IsGatewayReady checks if the server is accessible and healthy
func IsGatewayReady(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, GetGatewayURL()+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// NewHTTPClient creates an HTTP client for gateway requests
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// PostFile uploads content as the multipart field named field.
func PostFile(ctx context.Context, field, filename string, content []byte) (*http.Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to copy data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, GetGatewayURL()+"/api/storage/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return NewHTTPClient(5 * time.Minute).Do(req)
}

// DecodeJSONFromReader decodes a JSON object and closes rc
func DecodeJSONFromReader(rc io.ReadCloser) (map[string]interface{}, error) {
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(body, &result)
	return result, err
}

// GenerateUniqueID returns prefix plus a time-and-random suffix
func GenerateUniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), rand.Intn(10000))
}
