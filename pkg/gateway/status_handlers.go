package gateway

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/pinner/pkg/httputil"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
)

// healthProbeTimeout bounds the primary store probe made by /health.
const healthProbeTimeout = 3 * time.Second

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	IPFS      string `json:"ipfs"`
	Pinning   string `json:"pinning"`
	Uptime    string `json:"uptime"`
}

// healthHandler reports liveness. It answers 200 even when the primary store is down.
func (g *Gateway) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(timestampLayout),
		IPFS:      "down",
		Pinning:   "disabled",
		Uptime:    time.Since(g.startedAt).Round(time.Second).String(),
	}

	if g.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		err := g.deps.Store.Health(ctx)
		cancel()
		if err == nil {
			resp.IPFS = "up"
		} else {
			g.logger.ComponentWarn(logging.ComponentGateway, "IPFS health probe failed", zap.Error(err))
		}
	}
	if g.replicationEnabled() {
		resp.Pinning = "enabled"
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
