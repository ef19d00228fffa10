package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	gocid "github.com/ipfs/go-cid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	perrors "github.com/DeBrosOfficial/pinner/pkg/errors"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
)

// Store is the primary content store: an authoritative write and a full read by CID.
type Store interface {
	Put(ctx context.Context, data []byte, filename string) (string, error)
	Get(ctx context.Context, cid string) ([]byte, error)
	Health(ctx context.Context) error
}

// Client talks to a Kubo node over its HTTP RPC API (/api/v0).
type Client struct {
	apiURL     string
	httpClient *http.Client
	cidVersion int
	logger     *logging.ColoredLogger

	connectGroup singleflight.Group

	mu          sync.Mutex
	connected   bool
	nodeVersion string
}

// handshakeTimeout bounds the version call made by Connect.
const handshakeTimeout = 30 * time.Second

// Config holds configuration for the IPFS client
type Config struct {
	// APIURL is the base URL of the node's RPC API (e.g., "http://ipfs:5001").
	// If empty, defaults to "http://localhost:5001"
	APIURL string

	// Timeout bounds each RPC call. Zero means no client-side timeout.
	Timeout time.Duration

	// CIDVersion is passed to add; 0 yields Qm... identifiers.
	CIDVersion int
}

// AddResponse is one NDJSON object streamed back by /api/v0/add
type AddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// VersionResponse is the body of /api/v0/version
type VersionResponse struct {
	Version string `json:"Version"`
	Commit  string `json:"Commit"`
}

// rpcError is the error envelope Kubo returns on non-200 responses
type rpcError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

// NewClient creates a client handle. No network call is made until Connect or first use.
func NewClient(cfg Config, logger *logging.ColoredLogger) *Client {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "http://localhost:5001"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cidVersion: cfg.CIDVersion,
		logger:     logger,
	}
}

// Connect performs the one-time setup handshake with the node. It is idempotent once it
// succeeds; a failed attempt is retried on the next call. Concurrent callers share one
// in-flight handshake, and each stops waiting when its own ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	if c.isConnected() {
		return nil
	}

	ch := c.connectGroup.DoChan("connect", func() (any, error) {
		// Detached from the first caller so its cancellation does not fail the others.
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handshakeTimeout)
		defer cancel()
		return nil, c.handshake(hctx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("waiting for IPFS handshake: %w", ctx.Err())
	}
}

func (c *Client) handshake(ctx context.Context) error {
	resp, err := c.post(ctx, "/api/v0/version", nil, "")
	if err != nil {
		if isConnectionError(err) {
			return perrors.NewStoreUnavailableError(err)
		}
		return perrors.NewStoreWriteError(fmt.Errorf("version request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return perrors.NewStoreWriteError(readRPCError(resp))
	}

	var v VersionResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return perrors.NewStoreWriteError(fmt.Errorf("failed to decode version response: %w", err))
	}

	c.mu.Lock()
	c.connected = true
	c.nodeVersion = v.Version
	c.mu.Unlock()

	c.logger.ComponentInfo(logging.ComponentIPFS, "Connected to IPFS",
		zap.String("api_url", c.apiURL),
		zap.String("version", v.Version),
	)
	return nil
}

func (c *Client) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// NodeVersion returns the Kubo version reported during Connect, or "" before setup.
func (c *Client) NodeVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodeVersion
}

// Health checks that the node answers its identity endpoint
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.post(ctx, "/api/v0/id", nil, "")
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Put adds data to IPFS under filename and returns its CID.
// Errors are *errors.StoreError: unavailable when the node cannot be reached, write failure otherwise.
func (c *Client) Put(ctx context.Context, data []byte, filename string) (string, error) {
	if err := c.Connect(ctx); err != nil {
		var se *perrors.StoreError
		if errors.As(err, &se) {
			return "", err
		}
		return "", perrors.NewStoreWriteError(err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", perrors.NewStoreWriteError(fmt.Errorf("failed to create form file: %w", err))
	}
	if _, err := part.Write(data); err != nil {
		return "", perrors.NewStoreWriteError(fmt.Errorf("failed to copy data: %w", err))
	}
	if err := writer.Close(); err != nil {
		return "", perrors.NewStoreWriteError(fmt.Errorf("failed to close writer: %w", err))
	}

	values := url.Values{}
	values.Set("pin", "true")
	values.Set("cid-version", strconv.Itoa(c.cidVersion))

	resp, err := c.post(ctx, "/api/v0/add?"+values.Encode(), &buf, writer.FormDataContentType())
	if err != nil {
		if isConnectionError(err) {
			c.markDisconnected()
			return "", perrors.NewStoreUnavailableError(err)
		}
		return "", perrors.NewStoreWriteError(fmt.Errorf("add request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", perrors.NewStoreWriteError(readRPCError(resp))
	}

	// add streams NDJSON progress objects; drain all of them and keep the last one,
	// which names the file itself.
	dec := json.NewDecoder(resp.Body)
	var last AddResponse
	var hasResult bool
	for {
		var chunk AddResponse
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", perrors.NewStoreWriteError(fmt.Errorf("failed to decode add response: %w", err))
		}
		if chunk.Hash != "" {
			last = chunk
			hasResult = true
		}
	}

	if !hasResult {
		return "", perrors.NewStoreWriteError(fmt.Errorf("add response missing CID"))
	}
	if _, err := gocid.Decode(last.Hash); err != nil {
		return "", perrors.NewStoreWriteError(fmt.Errorf("node returned invalid CID %q: %w", last.Hash, err))
	}

	c.logger.ComponentInfo(logging.ComponentIPFS, "File added to IPFS",
		zap.String("cid", last.Hash),
		zap.String("name", filename),
		zap.Int("bytes", len(data)),
	)
	return last.Hash, nil
}

// Get retrieves the full content for cid, concatenating the streamed chunks in order.
func (c *Client) Get(ctx context.Context, cid string) ([]byte, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, perrors.NewStoreReadError(cid, false, err)
	}

	resp, err := c.post(ctx, "/api/v0/cat?arg="+url.QueryEscape(cid), nil, "")
	if err != nil {
		if isConnectionError(err) {
			c.markDisconnected()
		}
		return nil, perrors.NewStoreReadError(cid, false, fmt.Errorf("cat request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rpcErr := readRPCError(resp)
		return nil, perrors.NewStoreReadError(cid, isNotFound(resp.StatusCode, rpcErr), rpcErr)
	}

	var out bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			out.Write(chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, perrors.NewStoreReadError(cid, false, fmt.Errorf("failed to read content: %w", err))
		}
	}

	// Kubo reports failures that happen mid-stream in a trailer rather than the status line.
	if streamErr := resp.Trailer.Get("X-Stream-Error"); streamErr != "" {
		return nil, perrors.NewStoreReadError(cid, false, fmt.Errorf("stream error: %s", streamErr))
	}

	return out.Bytes(), nil
}

func (c *Client) post(ctx context.Context, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

func (c *Client) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func readRPCError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var e rpcError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return fmt.Errorf("ipfs rpc status %d: %s", resp.StatusCode, e.Message)
	}
	return fmt.Errorf("ipfs rpc status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func isNotFound(status int, err error) bool {
	if status == http.StatusNotFound {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "invalid path") ||
		strings.Contains(msg, "invalid cid")
}

// isConnectionError reports whether err means the node could not be reached at all.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
