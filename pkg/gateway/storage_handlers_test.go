package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	perrors "github.com/DeBrosOfficial/pinner/pkg/errors"
	"github.com/DeBrosOfficial/pinner/pkg/gateway/handlers/storage"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
	"github.com/DeBrosOfficial/pinner/pkg/pinning"
	"github.com/DeBrosOfficial/pinner/pkg/upload"
)

// mockUploader is a mock implementation of storage.Uploader for testing
type mockUploader struct {
	handleFunc   func(ctx context.Context, req upload.Request) (*upload.Result, error)
	retrieveFunc func(ctx context.Context, cid string) ([]byte, error)

	handleCalls   int
	retrieveCalls int
	lastRequest   upload.Request
}

func (m *mockUploader) Handle(ctx context.Context, req upload.Request) (*upload.Result, error) {
	m.handleCalls++
	m.lastRequest = req
	if m.handleFunc != nil {
		return m.handleFunc(ctx, req)
	}
	return &upload.Result{
		PrimaryCID: "Qm123",
		FinalCID:   "Qm123",
		Filename:   req.Filename,
		Size:       int64(len(req.Data)),
		MimeType:   req.MimeType,
		Gateways:   []string{"https://ipfs.io/ipfs/Qm123"},
	}, nil
}

func (m *mockUploader) Retrieve(ctx context.Context, cid string) ([]byte, error) {
	m.retrieveCalls++
	if m.retrieveFunc != nil {
		return m.retrieveFunc(ctx, cid)
	}
	return []byte("test content"), nil
}

// mockReplicas is a mock implementation of ReplicationTier for testing
type mockReplicas struct {
	enabled    bool
	statusFunc func(ctx context.Context, cid string) (*pinning.Status, error)
}

func (m *mockReplicas) Enabled() bool { return m.enabled }

func (m *mockReplicas) Status(ctx context.Context, cid string) (*pinning.Status, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx, cid)
	}
	return nil, nil
}

// mockStore is a mock implementation of HealthChecker for testing
type mockStore struct {
	err error
}

func (m *mockStore) Health(ctx context.Context) error { return m.err }

func newTestGateway(t *testing.T, cfg *Config, deps Dependencies) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	g, err := New(logging.NewNopLogger(), cfg, deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g.Routes()
}

func testCID(t *testing.T, data string, v1 bool) string {
	t.Helper()
	mh, err := multihash.Sum([]byte(data), multihash.SHA2_256, -1)
	if err != nil {
		t.Fatalf("multihash: %v", err)
	}
	if v1 {
		return cid.NewCidV1(cid.Raw, mh).String()
	}
	return cid.NewCidV0(mh).String()
}

type formPart struct {
	field    string
	filename string
	mimeType string
	content  []byte
}

func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		if p.filename != "" {
			h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		} else {
			h.Set("Content-Disposition", `form-data; name="`+p.field+`"`)
		}
		if p.mimeType != "" {
			h.Set("Content-Type", p.mimeType)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		w.Write(p.content)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rr.Body.String())
	}
	return out
}

func TestUploadHandler_MissingFile(t *testing.T) {
	tests := []struct {
		name        string
		body        io.Reader
		contentType string
	}{
		{
			name:        "json_body",
			body:        strings.NewReader(`{"name":"x"}`),
			contentType: "application/json",
		},
		{
			name:        "empty_body",
			body:        http.NoBody,
			contentType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUploader{}
			h := newTestGateway(t, nil, Dependencies{Uploader: up})

			req := httptest.NewRequest(http.MethodPost, "/api/storage/upload", tt.body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if got := decodeBody(t, rr)["error"]; got != "No file uploaded" {
				t.Errorf("unexpected error message %v", got)
			}
			if up.handleCalls != 0 {
				t.Errorf("uploader must not be called, got %d calls", up.handleCalls)
			}
		})
	}

	t.Run("multipart_without_file_field", func(t *testing.T) {
		up := &mockUploader{}
		h := newTestGateway(t, nil, Dependencies{Uploader: up})

		body, ct := multipartBody(t,
			formPart{field: "name", content: []byte("just text")},
			formPart{field: "other", filename: "a.txt", content: []byte("wrong field")},
		)
		req := httptest.NewRequest(http.MethodPost, "/api/storage/upload", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if up.handleCalls != 0 {
			t.Errorf("uploader must not be called")
		}
	})
}

func TestUploadHandler_TooLarge(t *testing.T) {
	const limit = 64

	tests := []struct {
		name     string
		size     int
		wantCode int
	}{
		{"at_limit", limit, http.StatusOK},
		{"one_over", limit + 1, http.StatusRequestEntityTooLarge},
		{"far_over", limit * 100, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUploader{}
			h := newTestGateway(t, &Config{MaxUploadSize: limit}, Dependencies{Uploader: up})

			body, ct := multipartBody(t, formPart{field: "file", filename: "big.bin", content: bytes.Repeat([]byte("a"), tt.size)})
			req := httptest.NewRequest(http.MethodPost, "/api/storage/upload", body)
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantCode == http.StatusRequestEntityTooLarge {
				if msg, _ := decodeBody(t, rr)["error"].(string); !strings.HasPrefix(msg, "File too large.") {
					t.Errorf("unexpected error message %q", msg)
				}
				if up.handleCalls != 0 {
					t.Errorf("uploader must not be called for oversized files")
				}
			}
		})
	}
}

func TestUploadHandler_Success(t *testing.T) {
	up := &mockUploader{
		handleFunc: func(ctx context.Context, req upload.Request) (*upload.Result, error) {
			return &upload.Result{
				PrimaryCID: "QmPrimary",
				ReplicaCID: "bafyReplica",
				FinalCID:   "bafyReplica",
				Replicated: true,
				Filename:   req.Filename,
				Size:       int64(len(req.Data)),
				MimeType:   req.MimeType,
				Gateways: []string{
					"https://ipfs.io/ipfs/bafyReplica",
					"https://nftstorage.link/ipfs/bafyReplica",
				},
			}, nil
		},
	}
	h := newTestGateway(t, nil, Dependencies{Uploader: up})

	body, ct := multipartBody(t,
		formPart{field: "description", content: []byte("ignored")},
		formPart{field: "file", filename: "photo.png", mimeType: "image/png", content: []byte("\x89PNG....")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/storage/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp storage.UploadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.CID != "bafyReplica" || resp.IPFSCID != "QmPrimary" || !resp.NFTStorage {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Filename != "photo.png" || resp.MimeType != "image/png" || resp.Size != 8 {
		t.Errorf("unexpected file metadata %+v", resp)
	}
	if len(resp.Gateways) != 2 {
		t.Errorf("expected 2 gateways, got %v", resp.Gateways)
	}

	if up.lastRequest.Filename != "photo.png" || string(up.lastRequest.Data) != "\x89PNG...." {
		t.Errorf("uploader received %+v", up.lastRequest)
	}
}

func TestUploadHandler_DefaultMimeType(t *testing.T) {
	up := &mockUploader{}
	h := newTestGateway(t, nil, Dependencies{Uploader: up})

	body, ct := multipartBody(t, formPart{field: "file", filename: "blob", content: []byte{0, 1, 2}})
	req := httptest.NewRequest(http.MethodPost, "/api/storage/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if up.lastRequest.MimeType != "application/octet-stream" {
		t.Errorf("expected octet-stream default, got %q", up.lastRequest.MimeType)
	}
}

func TestUploadHandler_PrimaryFailure(t *testing.T) {
	up := &mockUploader{
		handleFunc: func(ctx context.Context, req upload.Request) (*upload.Result, error) {
			return nil, perrors.NewUploadFailedError(perrors.NewStoreUnavailableError(errors.New("connection refused")))
		},
	}
	h := newTestGateway(t, nil, Dependencies{Uploader: up})

	body, ct := multipartBody(t, formPart{field: "file", filename: "a.txt", content: []byte("hello")})
	req := httptest.NewRequest(http.MethodPost, "/api/storage/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeBody(t, rr)
	if resp["error"] != "Upload failed" {
		t.Errorf("unexpected error %v", resp["error"])
	}
	details, _ := resp["details"].(string)
	if !strings.Contains(details, "connection refused") {
		t.Errorf("expected details to carry the cause, got %q", details)
	}
}

func TestRetrieveHandler(t *testing.T) {
	valid := testCID(t, "hello", false)

	t.Run("invalid_cid", func(t *testing.T) {
		up := &mockUploader{}
		h := newTestGateway(t, nil, Dependencies{Uploader: up})

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/storage/retrieve/not-a-cid", nil))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if up.retrieveCalls != 0 {
			t.Errorf("store must not be called for a malformed CID")
		}
	})

	t.Run("success", func(t *testing.T) {
		up := &mockUploader{
			retrieveFunc: func(ctx context.Context, c string) ([]byte, error) {
				if c != valid {
					t.Errorf("unexpected cid %q", c)
				}
				return []byte("<html><body>hi</body></html>"), nil
			},
		}
		h := newTestGateway(t, nil, Dependencies{Uploader: up})

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/storage/retrieve/"+valid, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected sniffed html content type, got %q", ct)
		}
		if rr.Body.String() != "<html><body>hi</body></html>" {
			t.Errorf("unexpected body %q", rr.Body.String())
		}
	})

	errCases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not_found", perrors.NewStoreReadError(valid, true, errors.New("block not found")), http.StatusNotFound},
		{"read_failure", perrors.NewStoreReadError(valid, false, errors.New("stream reset")), http.StatusBadGateway},
		{"unavailable", perrors.NewStoreUnavailableError(errors.New("dial tcp")), http.StatusServiceUnavailable},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUploader{
				retrieveFunc: func(ctx context.Context, c string) ([]byte, error) { return nil, tt.err },
			}
			h := newTestGateway(t, nil, Dependencies{Uploader: up})

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/storage/retrieve/"+valid, nil))

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	v1 := testCID(t, "hello", true)

	t.Run("replicated", func(t *testing.T) {
		replicas := &mockReplicas{
			enabled: true,
			statusFunc: func(ctx context.Context, c string) (*pinning.Status, error) {
				return &pinning.Status{CID: c, Pin: &pinning.PinInfo{CID: c, Status: "pinned"}}, nil
			},
		}
		h := newTestGateway(t, nil, Dependencies{Uploader: &mockUploader{}, Replicas: replicas})

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/storage/status/"+v1, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var resp storage.StatusResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.CID != v1 || resp.Version != 1 || resp.Codec != cid.Raw {
			t.Errorf("unexpected cid info %+v", resp)
		}
		if resp.Hash != "sha2-256" {
			t.Errorf("expected sha2-256, got %q", resp.Hash)
		}
		if resp.NFTStorage == nil || resp.NFTStorage.Pin == nil || resp.NFTStorage.Pin.Status != "pinned" {
			t.Errorf("expected pinned status, got %+v", resp.NFTStorage)
		}
	})

	t.Run("lookup_error_reports_null", func(t *testing.T) {
		replicas := &mockReplicas{
			enabled: true,
			statusFunc: func(ctx context.Context, c string) (*pinning.Status, error) {
				return nil, errors.New("check request failed")
			},
		}
		h := newTestGateway(t, nil, Dependencies{Uploader: &mockUploader{}, Replicas: replicas})

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/storage/status/"+v1, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		resp := decodeBody(t, rr)
		if v, ok := resp["nftStorage"]; !ok || v != nil {
			t.Errorf("expected nftStorage null, got %v", v)
		}
	})

	t.Run("invalid_cid", func(t *testing.T) {
		h := newTestGateway(t, nil, Dependencies{Uploader: &mockUploader{}})

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/storage/status/zzz", nil))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}
