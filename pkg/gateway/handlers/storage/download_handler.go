package storage

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/pinner/pkg/httputil"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
)

// RetrieveHandler handles GET /api/storage/retrieve/{cid}.
// It reads the content back from the primary store and writes it with a sniffed content type.
func (h *Handlers) RetrieveHandler(w http.ResponseWriter, r *http.Request) {
	c, err := parseCID(chi.URLParam(r, "cid"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := h.uploader.Retrieve(r.Context(), c.String())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := httputil.WriteBlob(w, data); err != nil {
		h.logger.ComponentError(logging.ComponentGateway, "failed to write content", zap.Error(err), zap.String("cid", c.String()))
	}
}
