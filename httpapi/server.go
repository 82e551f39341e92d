// Package httpapi serves identifier generation over HTTP, for hosts that
// call the generator as a sidecar service instead of linking it.
package httpapi

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/pg-sharding/pguuidv7/errors"
	"github.com/pg-sharding/pguuidv7/logging"
	"github.com/pg-sharding/pguuidv7/metrics"
	"github.com/pg-sharding/pguuidv7/tracing"
	"github.com/pg-sharding/pguuidv7/uuidv7"
	"github.com/pg-sharding/pguuidv7/uuidv7/google_uuid"
)

// ErrUnknownFormat reports a format query parameter outside the supported
// set.
var ErrUnknownFormat = errors.New("httpapi: unknown format, use canonical, hex or ulid")

// Server exposes the generator on /v1 routes plus a health endpoint.
type Server struct {
	cfg        *Config
	gen        *uuidv7.Generator
	httpServer *http.Server
}

// NewServer validates the config and builds a server around gen. A nil
// gen falls back to a generator with default clock and entropy.
func NewServer(cfg *Config, gen *uuidv7.Generator) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		gen = uuidv7.NewGenerator()
	}
	return &Server{cfg: cfg, gen: gen}, nil
}

// Run starts the API server and blocks until it stops.
func (s *Server) Run(_ context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.address,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.readTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Close shuts down the server.
func (s *Server) Close() error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}

// Handler returns the route tree wrapped in tracing, request ID and
// request duration middleware. Outer to inner: the span opens first so
// the request logger can pick up trace IDs.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/v1/uuid", s.handleGenerate)
	router.HandlerFunc(http.MethodGet, "/v1/uuids", s.handleBatch)
	router.GET("/v1/uuid/:id", s.handleInspect)
	router.HandlerFunc(http.MethodGet, "/healthz", handleHealth)

	var h http.Handler = metrics.RequestDurationMiddleware(router)
	h = logging.RequestIDMiddleware(nil)(h)
	return tracing.Middleware(h)
}

type generateResponse struct {
	UUID string `json:"uuid"`
}

type batchResponse struct {
	UUIDs []string `json:"uuids"`
}

type inspectResponse struct {
	UUID    string    `json:"uuid"`
	Time    time.Time `json:"time"`
	UnixMs  int64     `json:"unix_ms"`
	Counter uint32    `json:"counter"`
	Version byte      `json:"version"`
	Variant byte      `json:"variant"`
	ULID    string    `json:"ulid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// batchParams is traced onto the request span.
type batchParams struct {
	Count  int
	Format string
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	u, err := s.gen.Next()
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}

	rendered, err := renderID(u, format)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	tracing.TraceValue(r.Context(), "uuid", u.String())
	writeJSON(w, r, http.StatusOK, generateResponse{UUID: rendered})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest,
				errors.Errorf("httpapi: count %q is not a number", raw))
			return
		}
	}
	if count < 1 || count > s.cfg.maxBatch {
		writeError(w, r, http.StatusBadRequest,
			errors.Errorf("httpapi: count must be between 1 and %d", s.cfg.maxBatch))
		return
	}
	tracing.TraceAny(r.Context(), "batch", batchParams{Count: count, Format: format})

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		u, err := s.gen.Next()
		if err != nil {
			writeError(w, r, http.StatusServiceUnavailable, err)
			return
		}
		rendered, err := renderID(u, format)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		ids = append(ids, rendered)
	}
	writeJSON(w, r, http.StatusOK, batchResponse{UUIDs: ids})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	u, err := uuidv7.Parse(ps.ByName("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, r, http.StatusOK, inspectResponse{
		UUID:    u.String(),
		Time:    u.Time().UTC(),
		UnixMs:  u.Time().UnixMilli(),
		Counter: u.Counter(),
		Version: u.Version(),
		Variant: u.Variant(),
		ULID:    google_uuid.ULID(u).String(),
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// formatParam reads the format query parameter, defaulting to canonical.
func formatParam(r *http.Request) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		return "canonical", nil
	}
	switch format {
	case "canonical", "hex", "ulid":
		return format, nil
	default:
		return "", ErrUnknownFormat
	}
}

// renderID converts u into the requested wire representation.
func renderID(u uuidv7.UUID, format string) (string, error) {
	switch format {
	case "canonical":
		return u.String(), nil
	case "hex":
		return hex.EncodeToString(u.Bytes()), nil
	case "ulid":
		return google_uuid.ULID(u).String(), nil
	default:
		return "", ErrUnknownFormat
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.L(r.Context()).Error("response write failed", logging.ErrAttr(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	tracing.Error(r.Context(), err)
	logger := logging.L(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", logging.ErrAttr(err), logging.IntAttr("status", status))
	} else {
		logger.Warn("request rejected", logging.ErrAttr(err), logging.IntAttr("status", status))
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}
