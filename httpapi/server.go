// Package httpapi exposes a Translator over HTTP: a session tracks one
// context database across a stream of decodes, and /disassemble,
// /pcode, /ecode lift individual instructions against it. There is no
// WebSocket event stream, since a lifter has no execution events to
// push — each decode is an independent request/response.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lookbusy1344/sleigh-lift/translator"
)

// logger defaults to discarding output; SetLogger wires a real
// destination.
var logger = log.New(io.Discard, "", 0)

// SetLogger replaces the package's logger. Pass nil to restore the
// discarding default.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.New(io.Discard, "", 0)
		return
	}
	logger = l
}

// Server is the HTTP API over one loaded Translator.
type Server struct {
	t        *translator.Translator
	sessions *SessionManager
	mux      *http.ServeMux
	server   *http.Server

	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxBodyBytes int64
}

// NewServer wires handlers for t over addr, with the given read/write
// timeouts and a request-body size cap.
func NewServer(t *translator.Translator, addr string, readTimeout, writeTimeout time.Duration, maxBodyBytes int64) *Server {
	s := &Server{
		t:            t,
		sessions:     NewSessionManager(t.Prog.Context),
		mux:          http.NewServeMux(),
		addr:         addr,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		maxBodyBytes: maxBodyBytes,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/spec-info", s.handleSpecInfo)
	s.mux.HandleFunc("/api/v1/session", s.handleSession)
	s.mux.HandleFunc("/api/v1/session/", s.handleSessionRoute)
}

// Handler returns the HTTP handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	logger.Printf("sleigh-lift httpapi listening on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// corsMiddleware restricts cross-origin access to localhost: this
// service is meant for a local tool, not a public endpoint.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Printf("error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message, Code: status})
}

func readJSON(r *http.Request, maxBody int64, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	return decoder.Decode(v)
}

func decodeErrorStatus(err error) (int, string) {
	return http.StatusUnprocessableEntity, fmt.Sprintf("decode failed: %v", err)
}
