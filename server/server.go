package server

// This file contains most of the brains of the server, it loads the service
// key, creates and launches all of the key components and background threads,
// and it handles shutting them all down as well.

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/glowlabs-org/threadgroup"
	"github.com/go-chi/chi/v5"

	"github.com/glowlabs-org/vts/vts"
)

// VTSServer defines the structure for the verifiable timestamping server.
type VTSServer struct {
	// The signer holds the service key pair. It is built once during
	// startup, before any listener exists, and never changes afterwards.
	staticSigner  *vts.Signer
	staticConfig  Config
	staticMetrics *serverMetrics

	// staticSignLimiter is nil when rate limiting is disabled.
	staticSignLimiter *RateLimiter

	baseDir    string       // Base directory for server files
	logger     *Logger      // Custom logger for the server
	httpServer *http.Server // Web server for handling API requests
	httpPort   uint16       // Records the port that is being used to serve the api
	router     chi.Router   // Routing for HTTP requests
	tg         threadgroup.ThreadGroup
}

// NewVTSServer initializes a new instance of VTSServer and returns either the
// VTSServer or an error.
//
// cfg.BaseDir specifies the directory where all server files will be stored.
// The function will create this directory if it does not exist. A key store
// that is only half present or does not parse produces an error wrapping
// vts.ErrStorage, and no listener is started.
func NewVTSServer(cfg Config) (*VTSServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}
	logLevel, _ := ParseLogLevel(cfg.LogLevel)

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %v", err)
	}

	server := &VTSServer{
		staticConfig:  cfg,
		staticMetrics: newServerMetrics(),
		baseDir:       cfg.BaseDir,
	}
	if cfg.SignRateLimit > 0 {
		server.staticSignLimiter = NewRateLimiter(cfg.SignRateLimit, cfg.SignRateWindow)
	}

	// Create the logger and provision its shutdown.
	loggerPath := filepath.Join(cfg.BaseDir, "server.log")
	logger, err := NewLogger(logLevel, loggerPath, cfg.LogStdout)
	if err != nil {
		return nil, fmt.Errorf("logger initialization failed: %v", err)
	}
	server.tg.AfterStop(func() error {
		return logger.Close()
	})
	server.logger = logger

	// Load the service keys. Any failure here has to shut down the logger
	// that was already opened.
	kp, err := server.loadServerKeys()
	if err != nil {
		_ = server.tg.Stop()
		return nil, fmt.Errorf("failed to load vts server keys: %w", err)
	}
	server.staticSigner = vts.NewSigner(kp, cfg.Clock)

	// Create the http server and provision its shutdown.
	server.router = server.newRouter()
	server.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.tg.OnStop(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), httpServerCtxTimeout)
		defer cancel()
		err := server.httpServer.Shutdown(ctx)
		if err != nil {
			server.logger.Errorf("HTTP server shutdown error: %v", err)
			return fmt.Errorf("error shutting down the http server: %v", err)
		}
		return nil
	})

	// Start the background threads.
	if server.staticSignLimiter != nil {
		err = server.tg.Launch(func() {
			server.threadedPruneRateLimiter()
		})
		if err != nil {
			_ = server.tg.Stop()
			return nil, fmt.Errorf("unable to launch rate limiter pruning: %v", err)
		}
	}
	if err := server.launchAPI(); err != nil {
		_ = server.tg.Stop()
		return nil, err
	}

	// Return the initialized server
	return server, nil
}

// Close cleanly shuts down the VTSServer instance.
func (server *VTSServer) Close() error {
	// By placing this here, we know that every time a server is closed
	// during testing, we are reviewing the state to make sure it's all in
	// order.
	server.CheckInvariants()
	return server.tg.Stop()
}

// loadServerKeys will load the keys for the server from disk, creating new
// keys if no keys are found.
func (server *VTSServer) loadServerKeys() (vts.KeyPair, error) {
	privPath, pubPath := server.staticConfig.KeyPaths()
	kp, generated, err := vts.NewKeyStore(privPath, pubPath).LoadOrGenerateReport()
	if err != nil {
		server.logger.Errorf("unable to load key pair: %v", err)
		return vts.KeyPair{}, err
	}
	if generated {
		server.logger.Infow("created new key pair", "public_key", kp.PublicKey().String(), "private_key_file", privPath)
	} else {
		server.logger.Infow("loaded existing key pair", "public_key", kp.PublicKey().String(), "private_key_file", privPath)
	}
	return kp, nil
}

// threadedPruneRateLimiter periodically drops idle clients from the sign rate
// limiter so that the map does not grow with every address ever seen.
func (server *VTSServer) threadedPruneRateLimiter() {
	window := server.staticConfig.SignRateWindow
	for {
		if !server.tg.Sleep(window) {
			return
		}
		server.staticSignLimiter.Prune()
	}
}
