package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"

	"github.com/DeBrosOfficial/pinner/web"
)

var configJSTemplate = template.Must(template.New("config.js").Parse(`const CONFIG = {
  API_BASE_URL: {{.APIBaseURL}},
  MAX_FILE_SIZE: {{.MaxFileSize}},
  IPFS_GATEWAYS: {{.Gateways}}
};
`))

// renderConfigJS builds the browser UI's CONFIG object from the server config.
func renderConfigJS(cfg *Config) ([]byte, error) {
	apiBase, err := json.Marshal(cfg.APIBasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to encode api base: %w", err)
	}
	gateways, err := json.Marshal(cfg.Gateways)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateways: %w", err)
	}

	var buf bytes.Buffer
	err = configJSTemplate.Execute(&buf, map[string]any{
		"APIBaseURL":  string(apiBase),
		"MaxFileSize": cfg.MaxUploadSize,
		"Gateways":    string(gateways),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render config.js: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Gateway) configJSHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(g.configJS)
}

// staticHandler serves the embedded UI assets.
func (g *Gateway) staticHandler() http.HandlerFunc {
	fs := http.FileServer(http.FS(web.Static()))
	return func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	}
}
