package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/opd-ai/clipforge"
	"github.com/opd-ai/clipforge/catalog"
	"github.com/opd-ai/clipforge/config"
	"github.com/opd-ai/clipforge/storage"
	"github.com/sirupsen/logrus"
)

// Catalog is the subset of catalog.Store used by the server.
type Catalog interface {
	Add(r catalog.Record) error
	List() ([]catalog.Record, error)
	Get(id string) (catalog.Record, error)
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	layout     *storage.Layout
	catalog    Catalog
	pool       *clipforge.Pool

	maxUpload       int64
	container       string
	shutdownTimeout time.Duration
}

// New creates a server. It is not started until Start or Serve is called.
func New(cfg *config.Config, layout *storage.Layout, store Catalog, pool *clipforge.Pool) *Server {
	s := &Server{
		layout:          layout,
		catalog:         store,
		pool:            pool,
		maxUpload:       cfg.Server.MaxUploadSize,
		container:       cfg.Processing.Container,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /videos", s.handleList)
	mux.HandleFunc("GET /videos/{id}", s.handleGet)
	mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(fileOnlyFS{http.Dir(s.layout.Root())})))
	mux.HandleFunc("GET /{$}", s.handleIndex)
	return logRequests(mux)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP requests on the configured address.
// This method blocks until the server is stopped or encounters an error.
func (s *Server) Start() error {
	logrus.WithFields(logrus.Fields{
		"function": "Server.Start",
		"addr":     s.httpServer.Addr,
	}).Info("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on lis.
func (s *Server) Serve(lis net.Listener) error {
	return s.httpServer.Serve(lis)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ShutdownTimeout returns the configured grace period.
func (s *Server) ShutdownTimeout() time.Duration {
	return s.shutdownTimeout
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logrus.WithFields(logrus.Fields{
			"function": "server.logRequests",
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"elapsed":  time.Since(start).String(),
		}).Debug("Request served")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// fileOnlyFS hides directories so /media/ never produces listings.
type fileOnlyFS struct {
	fs http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
