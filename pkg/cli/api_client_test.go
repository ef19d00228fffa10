package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/pinner/pkg/gateway/handlers/storage"
	"github.com/DeBrosOfficial/pinner/pkg/history"
)

func TestResolveAPIBase(t *testing.T) {
	t.Setenv("PINNER_API_URL", "")
	assert.Equal(t, DefaultAPIBase, ResolveAPIBase(""))

	t.Setenv("PINNER_API_URL", "https://env.example/api/")
	assert.Equal(t, "https://env.example/api", ResolveAPIBase(""))
	assert.Equal(t, "https://flag.example/api", ResolveAPIBase("https://flag.example/api"))
}

func TestParseArgs(t *testing.T) {
	pos, flags := parseArgs([]string{"file.txt", "--api", "http://x/api", "--out=o.bin", "--unknown"}, "api", "out")
	assert.Equal(t, []string{"file.txt", "--unknown"}, pos)
	assert.Equal(t, "http://x/api", flags["api"])
	assert.Equal(t, "o.bin", flags["out"])
}

func TestAPIClientUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/storage/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "hello.txt", header.Filename)
		assert.Equal(t, "hello world", string(data))

		json.NewEncoder(w).Encode(storage.UploadResponse{
			Success:  true,
			CID:      "Qm123",
			IPFSCID:  "Qm123",
			Filename: header.Filename,
			Size:     int64(len(data)),
			Gateways: []string{"https://ipfs.io/ipfs/Qm123"},
		})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	resp, err := NewAPIClient(server.URL+"/api", nil).Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Qm123", resp.CID)
	assert.Equal(t, int64(11), resp.Size)
}

func TestAPIClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Upload failed","details":"IPFS node unreachable"}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	_, err := NewAPIClient(server.URL, nil).Upload(context.Background(), path)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "Upload failed", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "IPFS node unreachable")
}

func TestAPIClientRetrieveAndHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/health":
			io.WriteString(w, `{"status":"ok","timestamp":"2024-01-01T00:00:00.000Z","ipfs":"up","pinning":"disabled"}`)
		case strings.HasPrefix(r.URL.Path, "/api/storage/retrieve/"):
			io.WriteString(w, "content bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewAPIClient(server.URL+"/api", nil)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.IPFS)

	var buf bytes.Buffer
	n, err := c.Retrieve(context.Background(), "Qm123", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)
	assert.Equal(t, "content bytes", buf.String())
}

func TestAppendHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recent_uploads.json")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		resp := &storage.UploadResponse{CID: "Qm" + string(rune('a'+i)), Filename: "f", Size: 1}
		require.NoError(t, appendHistory(path, resp, at))
	}

	h := history.New(history.DefaultCapacity)
	require.NoError(t, h.Load(path))
	entries := h.Entries()
	require.Len(t, entries, 10)
	assert.Equal(t, "Qml", entries[0].CID)
	assert.Equal(t, at, entries[0].Timestamp)
}

func TestPrintRecent(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var empty bytes.Buffer
	printRecent(&empty, nil, now)
	assert.Contains(t, empty.String(), "No uploads yet")

	var buf bytes.Buffer
	printRecent(&buf, []history.Entry{
		{CID: "Qm1", Filename: "a.txt", Size: 2048, Timestamp: now.Add(-5 * time.Minute)},
	}, now)
	out := buf.String()
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "Qm1")
	assert.Contains(t, out, "2 KB")
	assert.Contains(t, out, "5 min ago")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 Bytes", formatBytes(0))
	assert.Equal(t, "512 Bytes", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "100 MB", formatBytes(100<<20))
}

func TestGatewayURL(t *testing.T) {
	t.Setenv("IPFS_GATEWAYS", "")
	assert.Equal(t, "https://ipfs.io/ipfs/Qm1", GatewayURL("Qm1"))

	t.Setenv("IPFS_GATEWAYS", "https://gw.example/ipfs/, https://other/ipfs/")
	assert.Equal(t, "https://gw.example/ipfs/Qm1", GatewayURL("Qm1"))
}
