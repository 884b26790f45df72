package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/controller"
	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/settings"
	"github.com/smukkama/smartclass/internal/songs"
	"github.com/smukkama/smartclass/pkg/config"
)

//go:embed dashboard.html
var dashboard []byte

// Controller is the part of the device controller the HTTP layer talks to
type Controller interface {
	Submit(ctx context.Context, cmd protocol.Command) (controller.Reply, error)
	Status() *controller.Status
	Capabilities() controller.Capabilities
	History() []controller.Record
}

// SongLister lists the playable songs
type SongLister interface {
	List() []songs.Entry
}

// Server is the dashboard HTTP server
type Server struct {
	config   *config.HTTPConfig
	ctrl     Controller
	catalog  SongLister
	store    settings.Store
	logger   *zap.Logger
	now      func() time.Time
	onSave   func()
	listener net.Listener
	http     *http.Server
}

// NewServer creates a server. Call Start to begin listening.
func NewServer(cfg *config.HTTPConfig, ctrl Controller, catalog SongLister, store settings.Store, logger *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		ctrl:    ctrl,
		catalog: catalog,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
	s.http = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// OnSave registers the hook run after settings are saved, when restart on
// save is enabled
func (s *Server) OnSave(fn func()) {
	s.onSave = fn
}

// Handler returns the router wrapped in middleware
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/data", s.handleData).Methods(http.MethodGet)
	r.HandleFunc("/cmd", s.handleCommand).Methods(http.MethodGet)
	r.HandleFunc("/scan", s.handleScan).Methods(http.MethodGet)
	r.HandleFunc("/save", s.handleSave).Methods(http.MethodPost)
	r.HandleFunc("/csv", s.handleCSV).Methods(http.MethodGet)
	r.HandleFunc("/songs", s.handleSongs).Methods(http.MethodGet)

	var h http.Handler = r
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = gziphandler.GzipHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.logger)),
		handlers.PrintRecoveryStack(true),
	)(h)
	return h
}

func (s *Server) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	s.logger.Debug("http request",
		zap.String("method", p.Request.Method),
		zap.String("path", p.URL.Path),
		zap.Int("status", p.StatusCode),
		zap.Int("size", p.Size),
		zap.Duration("took", time.Since(p.TimeStamp)),
	)
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	s.listener = listener
	s.logger.Info("HTTP server listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, empty before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop waits for in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
