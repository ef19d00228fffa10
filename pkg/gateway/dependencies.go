package gateway

import (
	"context"

	"github.com/DeBrosOfficial/pinner/pkg/gateway/handlers/storage"
	"github.com/DeBrosOfficial/pinner/pkg/pinning"
)

// HealthChecker reports whether the primary store is reachable.
// This interface matches *ipfs.Client.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ReplicationTier is the gateway's view of the best-effort replication service.
// This interface matches *pinning.Client.
type ReplicationTier interface {
	Enabled() bool
	Status(ctx context.Context, cid string) (*pinning.Status, error)
}

// Dependencies holds the service clients the Gateway routes to.
// Handles are constructed by the caller and injected, never created here.
type Dependencies struct {
	// Uploader runs the upload pipeline and retrieval
	Uploader storage.Uploader

	// Store is probed by /health
	Store HealthChecker

	// Replicas may be nil when replication is not wired at all
	Replicas ReplicationTier
}
