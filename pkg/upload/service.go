package upload

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	perrors "github.com/DeBrosOfficial/pinner/pkg/errors"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
	"github.com/DeBrosOfficial/pinner/pkg/pinning"
)

// PrimaryStore is the authoritative content store. A failed Put aborts the upload.
type PrimaryStore interface {
	Put(ctx context.Context, data []byte, filename string) (string, error)
	Get(ctx context.Context, cid string) ([]byte, error)
}

// Replicator is the best-effort tier. It has no error return: failures arrive in Result.Err.
type Replicator interface {
	TryPin(ctx context.Context, data []byte, filename, mimetype string) pinning.Result
}

// Request is a single uploaded file.
type Request struct {
	Data     []byte
	Filename string
	MimeType string
}

// Result describes where an upload ended up.
type Result struct {
	PrimaryCID string
	ReplicaCID string // empty unless Replicated
	FinalCID   string
	Replicated bool
	Filename   string
	Size       int64
	MimeType   string
	Gateways   []string
}

// Service sequences the primary write and the replication attempt.
type Service struct {
	store      PrimaryStore
	replicator Replicator
	gateways   GatewaySet
	logger     *logging.ColoredLogger
}

// NewService wires the orchestrator. replicator may be nil, which behaves like a disabled tier.
func NewService(store PrimaryStore, replicator Replicator, gateways GatewaySet, logger *logging.ColoredLogger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		store:      store,
		replicator: replicator,
		gateways:   gateways,
		logger:     logger,
	}
}

// Handle stores req on the primary store, then attempts replication.
// The only error it returns is *errors.UploadFailedError, when the primary write fails.
func (s *Service) Handle(ctx context.Context, req Request) (*Result, error) {
	uploadID := uuid.NewString()
	log := s.logger.With(zap.String("upload_id", uploadID), zap.String("name", req.Filename))

	log.ComponentInfo(logging.ComponentUpload, "Uploading", zap.String("mimetype", req.MimeType), zap.Int("bytes", len(req.Data)))

	primaryCID, err := s.store.Put(ctx, req.Data, req.Filename)
	if err != nil {
		log.ComponentError(logging.ComponentUpload, "Primary store write failed", zap.Error(err))
		return nil, perrors.NewUploadFailedError(err)
	}

	var replica pinning.Result
	if s.replicator != nil {
		replica = s.replicator.TryPin(ctx, req.Data, req.Filename, req.MimeType)
	} else {
		replica = pinning.Result{Skipped: true}
	}

	result := &Result{
		PrimaryCID: primaryCID,
		FinalCID:   primaryCID,
		Filename:   req.Filename,
		Size:       int64(len(req.Data)),
		MimeType:   req.MimeType,
	}

	if replica.OK() {
		result.ReplicaCID = replica.CID
		result.FinalCID = replica.CID
		result.Replicated = true
		if replica.CID != primaryCID {
			// Both tiers address the same bytes but may chunk or hash differently.
			log.ComponentWarn(logging.ComponentUpload, "Replica CID differs from primary CID",
				zap.String("primary_cid", primaryCID), zap.String("replica_cid", replica.CID))
		}
	}

	result.Gateways = s.gateways.URLs(result.FinalCID, result.Replicated)

	log.ComponentInfo(logging.ComponentUpload, "Upload complete",
		zap.String("cid", result.FinalCID),
		zap.Bool("replicated", result.Replicated),
		zap.Bool("replication_skipped", replica.Skipped),
	)
	return result, nil
}

// Retrieve reads the full content for cid back from the primary store.
func (s *Service) Retrieve(ctx context.Context, cid string) ([]byte, error) {
	data, err := s.store.Get(ctx, cid)
	if err != nil {
		s.logger.ComponentError(logging.ComponentUpload, "Retrieval failed", zap.Error(err), zap.String("cid", cid))
		return nil, err
	}
	return data, nil
}
