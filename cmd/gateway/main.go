package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/pinner/pkg/config"
	"github.com/DeBrosOfficial/pinner/pkg/gateway"
	"github.com/DeBrosOfficial/pinner/pkg/ipfs"
	"github.com/DeBrosOfficial/pinner/pkg/logging"
	"github.com/DeBrosOfficial/pinner/pkg/pinning"
	"github.com/DeBrosOfficial/pinner/pkg/upload"
)

func setupLogger(cfg config.LoggingConfig) *logging.ColoredLogger {
	var (
		logger *logging.ColoredLogger
		err    error
	)
	if cfg.OutputFile != "" {
		logger, err = logging.NewFileLogger(cfg.OutputFile, cfg.Colors)
	} else {
		logger, err = logging.NewColoredLogger(cfg.Colors)
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	cfg, err := parseGatewayConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	defer logger.Sync()

	store := ipfs.NewClient(ipfs.Config{
		APIURL:     cfg.IPFS.APIURL(),
		Timeout:    cfg.IPFS.Timeout,
		CIDVersion: cfg.IPFS.CIDVersion,
	}, logger)

	// The node may still be starting; Put reconnects on demand.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Connect(connectCtx); err != nil {
		logger.ComponentWarn(logging.ComponentIPFS, "IPFS node not reachable at startup, will retry on first upload",
			zap.String("api_url", cfg.IPFS.APIURL()), zap.Error(err))
	}
	cancelConnect()

	replicas := pinning.NewClient(pinning.Config{
		Token:   cfg.Pinning.APIKey,
		APIURL:  cfg.Pinning.APIURL,
		Timeout: cfg.Pinning.Timeout,
	}, logger)

	svc := upload.NewService(store, replicas, upload.GatewaySet{
		Bases:       cfg.Gateways,
		ReplicaBase: cfg.Pinning.GatewayBase,
	}, logger)

	g, err := gateway.New(logger, &gateway.Config{
		ListenAddr:    cfg.Server.ListenAddr(),
		CORSOrigin:    cfg.Server.CORSOrigin,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Gateways:      cfg.Gateways,
	}, gateway.Dependencies{
		Uploader: svc,
		Store:    store,
		Replicas: replicas,
	})
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to initialize gateway", zap.Error(err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Server.ListenAddr(),
		Handler:           g.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.ComponentInfo(logging.ComponentGeneral, "Server running",
			zap.String("addr", server.Addr),
			zap.String("ipfs", cfg.IPFS.APIURL()),
			zap.Bool("replication", replicas.Enabled()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ComponentError(logging.ComponentGeneral, "HTTP server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.ComponentInfo(logging.ComponentGeneral, "Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.ComponentError(logging.ComponentGeneral, "HTTP server shutdown error", zap.Error(err))
	}
	logger.ComponentInfo(logging.ComponentGeneral, "Shutdown complete")
}
