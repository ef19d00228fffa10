// Package pinning replicates uploads to a remote pinning service (an NFT.Storage-compatible
// blob API). It is a best-effort tier: no method of Client returns an error from a write.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocid "github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/pinner/pkg/logging"
)

const (
	// minTokenLength and tokenPrefix describe what a usable API token looks like (a JWT).
	minTokenLength = 50
	tokenPrefix    = "ey"

	defaultMimeType = "application/octet-stream"
)

// Result is the outcome of a replication attempt.
// Exactly one of CID, Skipped, or Err is set.
type Result struct {
	CID     string
	Skipped bool  // replication is disabled; no network call was made
	Err     error // the remote write failed; informational only
}

// OK reports whether the content was replicated.
func (r Result) OK() bool {
	return r.CID != "" && r.Err == nil
}

// Config holds configuration for the pinning client
type Config struct {
	// Token is the bearer credential. Empty or malformed tokens disable the client.
	Token string

	// APIURL is the service base URL. Defaults to "https://api.nft.storage".
	APIURL string

	// Timeout bounds each call. Zero means no client-side timeout.
	Timeout time.Duration
}

// Status is the service's view of a CID, as returned by /check/{cid}
type Status struct {
	CID   string     `json:"cid"`
	Pin   *PinInfo   `json:"pin,omitempty"`
	Deals []DealInfo `json:"deals"`
}

// PinInfo describes the pin held by the service
type PinInfo struct {
	CID     string `json:"cid"`
	Status  string `json:"status"` // "queued", "pinning", "pinned", "failed"
	Created string `json:"created,omitempty"`
}

// DealInfo describes a storage deal for the content
type DealInfo struct {
	Status   string `json:"status"`
	Provider string `json:"miner,omitempty"`
}

// apiResponse is the envelope every endpoint of the service answers with
type apiResponse struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client uploads blobs to the pinning service.
type Client struct {
	apiURL     string
	token      string
	enabled    bool
	httpClient *http.Client
	logger     *logging.ColoredLogger
}

// ValidToken reports whether token looks like a real credential: non-empty, longer than
// minTokenLength, and JWT-shaped.
func ValidToken(token string) bool {
	token = strings.TrimSpace(token)
	return len(token) > minTokenLength && strings.HasPrefix(token, tokenPrefix)
}

// NewClient creates a pinning client. It never fails: a missing or malformed token yields a
// disabled client whose TryPin returns Skipped results.
func NewClient(cfg Config, logger *logging.ColoredLogger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.nft.storage"
	}

	c := &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}

	switch token := strings.TrimSpace(cfg.Token); {
	case token == "":
		logger.ComponentInfo(logging.ComponentPinning, "No pinning API key, replication skipped")
	case !ValidToken(token):
		logger.ComponentWarn(logging.ComponentPinning, "Invalid pinning API key, replication disabled")
	default:
		c.token = token
		c.enabled = true
		logger.ComponentInfo(logging.ComponentPinning, "Pinning client initialized, replication enabled",
			zap.String("api_url", apiURL))
	}

	return c
}

// Enabled reports whether a usable token was configured.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// TryPin stores data on the pinning service and returns the resulting CID.
// It never returns an error or panics: every failure is reported through Result.Err.
func (c *Client) TryPin(ctx context.Context, data []byte, filename, mimetype string) (res Result) {
	if !c.Enabled() {
		return Result{Skipped: true}
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("pinning panicked: %v", r)}
			c.logger.ComponentError(logging.ComponentPinning, "Recovered from panic during pin",
				zap.Any("panic", r), zap.String("name", filename))
		}
	}()

	cid, err := c.storeBlob(ctx, data, filename, mimetype)
	if err != nil {
		c.logger.ComponentWarn(logging.ComponentPinning, "Pinning failed, continuing with primary store only",
			zap.Error(err), zap.String("name", filename))
		return Result{Err: err}
	}

	c.logger.ComponentInfo(logging.ComponentPinning, "File pinned",
		zap.String("cid", cid), zap.String("name", filename))
	return Result{CID: cid}
}

func (c *Client) storeBlob(ctx context.Context, data []byte, filename, mimetype string) (string, error) {
	if mimetype == "" {
		mimetype = defaultMimeType
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/upload", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mimetype)
	if filename != "" {
		req.Header.Set("X-Name", url.PathEscape(filename))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	value, err := decodeResponse(resp)
	if err != nil {
		return "", err
	}

	var stored struct {
		CID string `json:"cid"`
	}
	if err := json.Unmarshal(value, &stored); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if _, err := gocid.Decode(stored.CID); err != nil {
		return "", fmt.Errorf("service returned invalid CID %q: %w", stored.CID, err)
	}

	return stored.CID, nil
}

// Status asks the service what it holds for cid. A disabled client returns (nil, nil).
func (c *Client) Status(ctx context.Context, cid string) (*Status, error) {
	if !c.Enabled() {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/check/"+url.PathEscape(cid), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("check request failed: %w", err)
	}
	defer resp.Body.Close()

	value, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}

	var status Status
	if err := json.Unmarshal(value, &status); err != nil {
		return nil, fmt.Errorf("failed to decode check response: %w", err)
	}
	if status.CID == "" {
		status.CID = cid
	}
	return &status, nil
}

func decodeResponse(resp *http.Response) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env apiResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("status %d: unexpected response: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.OK {
		msg := "request rejected"
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}

	return env.Value, nil
}
