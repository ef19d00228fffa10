package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticUI(t *testing.T) {
	h := newTestGateway(t, nil, Dependencies{Uploader: &mockUploader{}})

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "<title>Pinner</title>"},
		{"/app.js", "recentUploads"},
		{"/style.css", ".upload-area"},
	}

	for _, tt := range tests {
		t.Run(strings.TrimPrefix(tt.path, "/"), func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("expected body to contain %q", tt.contains)
			}
		})
	}
}

func TestConfigJS(t *testing.T) {
	cfg := &Config{
		MaxUploadSize: 1024,
		Gateways:      []string{"https://gw.example/ipfs/", "https://other.example/ipfs/"},
	}
	h := newTestGateway(t, cfg, Dependencies{Uploader: &mockUploader{}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/config.js", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Errorf("unexpected content type %q", ct)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`API_BASE_URL: "/api"`,
		"MAX_FILE_SIZE: 1024",
		`["https://gw.example/ipfs/","https://other.example/ipfs/"]`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("config.js missing %q:\n%s", want, body)
		}
	}
}
