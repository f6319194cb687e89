package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ValentinKolb/nanoKV/lib/metrics"
	"github.com/ValentinKolb/nanoKV/lib/ops"
	"github.com/ValentinKolb/nanoKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rest")

// maxBodySize limits the size of a /set request body
const maxBodySize = 64 << 20

// shutdownTimeout bounds how long Serve waits for in-flight requests
const shutdownTimeout = 5 * time.Second

// --------------------------------------------------------------------------
// JSON types
// --------------------------------------------------------------------------

// SetRequest is the body of POST /set. Value is standard base64.
type SetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetResponse is the body of a successful GET /get/{key}. Value is standard base64.
type GetResponse struct {
	Value string `json:"value"`
}

// StatusResponse is the body of the write endpoints. Message is null on success.
type StatusResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
}

func failure(msg string) StatusResponse {
	return StatusResponse{Message: &msg}
}

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

// Server is the HTTP/JSON facade of the store.
type Server struct {
	store    store.IStore
	observer store.Observer
	registry *metrics.Registry
	handler  http.Handler
}

// NewServer creates the facade. registry may be nil, /metrics then answers 404.
func NewServer(s store.IStore, registry *metrics.Registry) *Server {
	srv := &Server{store: s, registry: registry}
	if registry != nil {
		srv.observer = registry
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /set", srv.handleSet)
	mux.HandleFunc("GET /get/{key}", srv.handleGet)
	mux.HandleFunc("DELETE /delete/{key}", srv.handleDelete)
	mux.HandleFunc("GET /flush", srv.handleFlush)
	mux.HandleFunc("GET /keys", srv.handleKeys)
	if registry != nil {
		mux.HandleFunc("GET /metrics", srv.handleMetrics)
	}
	srv.handler = loggerMiddleware(mux)

	return srv
}

// Handler returns the routed handler, including the request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve serves HTTP on listener until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		Logger.Infof("Starting HTTP server on %s", listener.Addr())
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	Logger.Infof("HTTP server on %s stopped", listener.Addr())
	return nil
}

// ListenAndServe binds address and runs Serve.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return s.Serve(ctx, listener)
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (s *Server) apply(op ops.Operation) ops.Reply {
	return store.Apply(s.store, op, s.observer)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req SetRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("Invalid JSON body"))
		return
	}

	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, failure("Invalid Base64"))
		return
	}

	s.writeStatus(w, s.apply(ops.Set{Key: req.Key, Value: value}))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	reply := s.apply(ops.Get{Key: r.PathValue("key")})

	switch reply.Status {
	case ops.StatusOk:
		value, _ := reply.Value.([]byte)
		writeJSON(w, http.StatusOK, GetResponse{Value: base64.StdEncoding.EncodeToString(value)})
	case ops.StatusNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		Logger.Errorf("get %q failed: %v", r.PathValue("key"), reply.Err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w, s.apply(ops.Delete{Key: r.PathValue("key")}))
}

func (s *Server) handleFlush(w http.ResponseWriter, _ *http.Request) {
	s.writeStatus(w, s.apply(ops.Flush{}))
}

func (s *Server) handleKeys(w http.ResponseWriter, _ *http.Request) {
	reply := s.apply(ops.Keys{})
	if reply.IsErr() {
		Logger.Errorf("keys failed: %v", reply.Err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	keys, _ := reply.Value.([]string)
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	s.registry.WritePrometheus(w)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// writeStatus renders the reply of a write operation as StatusResponse
func (s *Server) writeStatus(w http.ResponseWriter, reply ops.Reply) {
	switch reply.Status {
	case ops.StatusOk:
		writeJSON(w, http.StatusOK, StatusResponse{Success: true})
	case ops.StatusNotFound:
		writeJSON(w, http.StatusOK, failure("Key not found"))
	default:
		writeJSON(w, http.StatusOK, failure(reply.Err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter captures the status code of a response
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware logs every request at debug level
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
