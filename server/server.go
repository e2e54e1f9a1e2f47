// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package server exposes the diagnostics operations over HTTP
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/diagnosis"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
)

const shutdownTimeout = 5 * time.Second

// Engine runs the diagnostic operations. *diagnosis.Diagnostics implements it.
type Engine interface {
	Interfaces(ctx context.Context) result.InterfacesResult
	Stats(ctx context.Context) result.CountersResult
	Ping(ctx context.Context, host string, count int) (result.PingResult, error)
	Traceroute(ctx context.Context, host string) (result.TracerouteResult, error)
	DNS(ctx context.Context, domain string) (result.DnsResult, error)
	Speedtest(ctx context.Context) result.ThroughputResult
	BandwidthMonitor(ctx context.Context, duration, interval int) (result.BandwidthSession, error)
	Connectivity(ctx context.Context) []result.ConnectivityResult
	FullDiagnosis(ctx context.Context) result.FullDiagnosis
}

// ErrorResponse is the JSON body returned on error from the HTTP API.
type ErrorResponse struct {
	Code    result.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// HealthResponse is the JSON body of the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

// Server is the HTTP server for the diagnostics API
type Server struct {
	engine  Engine
	started time.Time
	mux     *http.ServeMux
}

// NewServer creates a new HTTP server routing to engine
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:  engine,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /api/interfaces", s.InterfacesHandler)
	s.mux.HandleFunc("GET /api/stats", s.StatsHandler)
	s.mux.HandleFunc("GET /api/ping/{host}", s.PingHandler)
	s.mux.HandleFunc("GET /api/traceroute/{host}", s.TracerouteHandler)
	s.mux.HandleFunc("GET /api/dns/{domain}", s.DNSHandler)
	s.mux.HandleFunc("GET /api/speedtest", s.SpeedtestHandler)
	s.mux.HandleFunc("GET /api/bandwidth-monitor", s.BandwidthMonitorHandler)
	s.mux.HandleFunc("GET /api/connectivity", s.ConnectivityHandler)
	s.mux.HandleFunc("GET /api/full-diagnosis", s.FullDiagnosisHandler)
	s.mux.HandleFunc("/health", s.HealthHandler)
	return s
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

// InterfacesHandler handles GET /api/interfaces
func (s *Server) InterfacesHandler(w http.ResponseWriter, r *http.Request) {
	res := s.engine.Interfaces(r.Context())
	if res.Error != nil {
		writeError(w, http.StatusInternalServerError, res.Error)
		return
	}
	writeJSON(w, http.StatusOK, res.Interfaces)
}

// StatsHandler handles GET /api/stats
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	res := s.engine.Stats(r.Context())
	if res.Error != nil {
		writeError(w, http.StatusInternalServerError, res.Error)
		return
	}
	writeJSON(w, http.StatusOK, res.IOCounters)
}

// PingHandler handles GET /api/ping/{host}?count=N
func (s *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Ping(r.Context(), r.PathValue("host"), parsePingCount(r.URL))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TracerouteHandler handles GET /api/traceroute/{host}
func (s *Server) TracerouteHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Traceroute(r.Context(), r.PathValue("host"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DNSHandler handles GET /api/dns/{domain}
func (s *Server) DNSHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.DNS(r.Context(), r.PathValue("domain"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SpeedtestHandler handles GET /api/speedtest
func (s *Server) SpeedtestHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Speedtest(r.Context()))
}

// BandwidthMonitorHandler handles GET /api/bandwidth-monitor?duration=N&interval=N.
// A session that stopped early is still a 200 carrying its partial samples.
func (s *Server) BandwidthMonitorHandler(w http.ResponseWriter, r *http.Request) {
	duration, interval := parseMonitorParams(r.URL)
	session, err := s.engine.BandwidthMonitor(r.Context(), duration, interval)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ConnectivityHandler handles GET /api/connectivity
func (s *Server) ConnectivityHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Connectivity(r.Context()))
}

// FullDiagnosisHandler handles GET /api/full-diagnosis
func (s *Server) FullDiagnosisHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.FullDiagnosis(r.Context()))
}

// HealthHandler handles GET and HEAD /health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Debugf("failed to encode health response: %s", err)
	}
}

// Start starts the HTTP server on the specified address and serves until ctx
// is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting HTTP server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// writeEngineError maps invalid requests to 400 and anything else to 500
func writeEngineError(w http.ResponseWriter, err error) {
	var invalidErr *diagnosis.InvalidRequestError
	if errors.As(err, &invalidErr) {
		writeError(w, http.StatusBadRequest, &result.ProbeError{Code: result.ErrCodeInvalidRequest, Message: err.Error()})
		return
	}
	writeError(w, http.StatusInternalServerError, common.ClassifyError(err))
}

func writeError(w http.ResponseWriter, status int, probeErr *result.ProbeError) {
	writeJSON(w, status, ErrorResponse{Code: probeErr.Code, Message: probeErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("failed to encode response: %s", err)
	}
}
