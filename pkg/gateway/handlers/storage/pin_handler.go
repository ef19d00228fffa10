package storage

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/multiformats/go-multihash"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/pinner/pkg/httputil"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
	"github.com/DeBrosOfficial/pinner/pkg/pinning"
)

// StatusHandler handles GET /api/storage/status/{cid}.
// It reports the CID's structure and what the replication service knows about it.
// A failed lookup is logged and reported as a null nftStorage field.
func (h *Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	c, err := parseCID(chi.URLParam(r, "cid"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := StatusResponse{
		CID:     c.String(),
		Version: c.Version(),
		Codec:   c.Type(),
	}
	if decoded, err := multihash.Decode(c.Hash()); err == nil {
		resp.Hash = decoded.Name
	}

	if h.replicas != nil {
		var st *pinning.Status
		st, err = h.replicas.Status(r.Context(), c.String())
		if err != nil {
			h.logger.ComponentWarn(logging.ComponentGateway, "replication status lookup failed",
				zap.Error(err), zap.String("cid", c.String()))
		} else {
			resp.NFTStorage = st
		}
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
