package gateway

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/pinner/pkg/config"
	"github.com/DeBrosOfficial/pinner/pkg/gateway/handlers/storage"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
)

// Gateway is the HTTP boundary of the upload service.
type Gateway struct {
	logger    *logging.ColoredLogger
	cfg       *Config
	deps      Dependencies
	storage   *storage.Handlers
	configJS  []byte
	startedAt time.Time
}

// New validates cfg and deps and prepares the handlers.
func New(logger *logging.ColoredLogger, cfg *Config, deps Dependencies) (*Gateway, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg == nil {
		return nil, errors.New("gateway config is required")
	}
	if deps.Uploader == nil {
		return nil, errors.New("gateway requires an uploader")
	}

	c := *cfg
	if c.CORSOrigin == "" {
		c.CORSOrigin = "*"
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = config.MaxUploadSize
	}
	if c.APIBasePath == "" {
		c.APIBasePath = "/api"
	}
	if len(c.Gateways) == 0 {
		c.Gateways = append([]string(nil), config.DefaultGateways...)
	}

	var replicas storage.ReplicaChecker
	if deps.Replicas != nil {
		replicas = deps.Replicas
	}

	g := &Gateway{
		logger:    logger,
		cfg:       &c,
		deps:      deps,
		storage:   storage.New(deps.Uploader, replicas, logger, storage.Config{MaxUploadSize: c.MaxUploadSize}),
		startedAt: time.Now(),
	}

	js, err := renderConfigJS(&c)
	if err != nil {
		return nil, err
	}
	g.configJS = js

	logger.ComponentInfo(logging.ComponentGateway, "Gateway initialized",
		zap.String("api_base", c.APIBasePath),
		zap.String("cors_origin", c.CORSOrigin),
		zap.Int64("max_upload_size", c.MaxUploadSize),
		zap.Bool("replication_enabled", g.replicationEnabled()),
	)

	return g, nil
}

func (g *Gateway) replicationEnabled() bool {
	return g.deps.Replicas != nil && g.deps.Replicas.Enabled()
}
