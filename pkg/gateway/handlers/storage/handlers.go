package storage

import (
	"context"
	"net/http"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	perrors "github.com/DeBrosOfficial/pinner/pkg/errors"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
	"github.com/DeBrosOfficial/pinner/pkg/pinning"
	"github.com/DeBrosOfficial/pinner/pkg/upload"
)

// Uploader runs an upload through both storage tiers and reads content back.
// This interface matches *upload.Service.
type Uploader interface {
	Handle(ctx context.Context, req upload.Request) (*upload.Result, error)
	Retrieve(ctx context.Context, cid string) ([]byte, error)
}

// ReplicaChecker reports the replication tier's view of a CID.
// This interface matches *pinning.Client.
type ReplicaChecker interface {
	Status(ctx context.Context, cid string) (*pinning.Status, error)
}

// Config holds configuration values needed by storage handlers.
type Config struct {
	// MaxUploadSize is the largest accepted file part, in bytes
	MaxUploadSize int64
}

// Handlers provides HTTP handlers for upload, retrieval and replication status.
type Handlers struct {
	uploader Uploader
	replicas ReplicaChecker
	logger   *logging.ColoredLogger
	config   Config
}

// New creates a new storage handlers instance with the provided dependencies.
// replicas may be nil, in which case status lookups always report no replica.
func New(uploader Uploader, replicas ReplicaChecker, logger *logging.ColoredLogger, config Config) *Handlers {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Handlers{
		uploader: uploader,
		replicas: replicas,
		logger:   logger,
		config:   config,
	}
}

// writeError logs err and writes it with the status derived from its code.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := perrors.StatusCode(err)
	fields := []zap.Field{zap.Error(err), zap.String("path", r.URL.Path), zap.Int("status", status)}
	if status >= http.StatusInternalServerError {
		h.logger.ComponentError(logging.ComponentGateway, "request failed", fields...)
	} else {
		h.logger.ComponentWarn(logging.ComponentGateway, "request rejected", fields...)
	}
	perrors.WriteHTTPError(w, err)
}

// parseCID validates a CID path parameter.
func parseCID(raw string) (cid.Cid, error) {
	if raw == "" {
		return cid.Undef, perrors.NewValidationError("cid", "cid required")
	}
	c, err := cid.Decode(raw)
	if err != nil {
		return cid.Undef, perrors.NewValidationError("cid", "invalid CID: "+raw)
	}
	return c, nil
}
