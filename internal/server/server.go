// =============================================================================
// Survey Address Converter - HTTP Server
// =============================================================================
//
// The server exposes the converter over HTTP:
//
//   POST /api/convert          upload a survey file and start a run (202)
//   GET  /api/progress/:id     server-sent progress events of a run
//   GET  /api/result/:id       the outcome of a finished run, handed out once
//   GET  /api/download/:name   a generated file from the download directory
//   POST /api/validate         column and complement report of a file
//   GET  /api/model.csv        an empty file with the expected header
//   GET  /healthz              liveness probe
//
// Runs execute in background goroutines. Generated files older than the
// configured retention are removed by a periodic sweeper.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/logger"
	"github.com/ginjaninja78/survey-xml-converter/internal/progress"
	"github.com/ginjaninja78/survey-xml-converter/pkg/utils"
)

// Timeouts of the HTTP server.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	sweepInterval     = 10 * time.Minute
)

// Server is the HTTP surface of the converter.
type Server struct {
	cfg      *config.Config
	log      logger.Interface
	registry *progress.Registry
	files    *utils.FileManager
	router   *gin.Engine
}

// New creates a Server and registers its routes.
func New(cfg *config.Config, log logger.Interface) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: progress.NewRegistry(),
		files:    utils.NewFileManager(cfg.UploadDir, cfg.DownloadDir),
	}
	s.router = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the run registry.
func (s *Server) Registry() *progress.Registry {
	return s.registry
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(s.log))
	router.Use(recoveryMiddleware(s.log))
	router.MaxMultipartMemory = 32 << 20

	router.GET("/healthz", s.handleHealth)

	upload := uploadLimiter(s.cfg.Server.UploadsPerMinute)

	api := router.Group("/api")
	api.POST("/convert", upload, s.handleConvert)
	api.GET("/progress/:id", s.handleProgress)
	api.GET("/result/:id", s.handleResult)
	api.GET("/download/:name", s.handleDownload)
	api.POST("/validate", upload, s.handleValidate)
	api.GET("/model.csv", s.handleModel)

	return router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.files.EnsureDirectories(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// sweep removes expired downloads and stale uploads every interval.
func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanOnce()
		}
	}
}

func (s *Server) cleanOnce() {
	retention := s.cfg.Server.DownloadRetention
	for _, dir := range []string{s.cfg.DownloadDir, s.cfg.UploadDir} {
		removed, err := utils.CleanOldFiles(dir, retention)
		if err != nil {
			s.log.Warn("Cleanup of %s failed: %v", dir, err)
			continue
		}
		if removed > 0 {
			s.log.Info("Removed %d file(s) older than %s from %s", removed, retention, dir)
		}
	}
	if n := s.registry.Evict(retention); n > 0 {
		s.log.Info("Forgot %d finished run(s) whose result was never read", n)
	}
}
