package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nao1215/lanscan/internal/model"
)

// apiResponse is the uniform envelope every endpoint responds with.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// healthState is the health endpoint payload.
type healthState struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// portalConfig is the config endpoint payload. Scan credentials never
// appear here: the portal reveals what it would scan, not how.
type portalConfig struct {
	Networks        []string `json:"networks"`
	CacheTTLSeconds float64  `json:"cache_ttl_seconds"`
}

// networkState is one network's cache state in the networks payload.
type networkState struct {
	Network     string     `json:"network"`
	Cached      bool       `json:"cached"`
	Stale       bool       `json:"stale"`
	Devices     int        `json:"devices"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
	ScanID      string     `json:"scan_id,omitempty"`
}

// scanResult is the devices and scan endpoint payload.
type scanResult struct {
	Network     string        `json:"network"`
	ScanID      string        `json:"scan_id"`
	RefreshedAt time.Time     `json:"refreshed_at"`
	Stale       bool          `json:"stale"`
	Devices     model.Devices `json:"devices"`
}

// scanRequest is the request body for a forced refresh.
type scanRequest struct {
	Network string `json:"network"`
}

// Handler returns the portal's HTTP handler with all routes and middleware
// attached. It is exposed so tests can drive the API without a listener.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests, s.recoverPanics)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/config", s.configHandler).Methods(http.MethodGet)
	api.HandleFunc("/networks", s.networksHandler).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.devicesHandler).Methods(http.MethodGet)
	api.HandleFunc("/scan", s.scanHandler).Methods(http.MethodPost)
	api.HandleFunc("/groups", s.groupsHandler).Methods(http.MethodGet)

	return router
}

// healthHandler reports liveness and the running version.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	s.sendDataResponse(w, healthState{Status: "ok", Version: s.version})
}

// configHandler reports the configured networks and cache TTL.
func (s *Server) configHandler(w http.ResponseWriter, _ *http.Request) {
	s.sendDataResponse(w, portalConfig{
		Networks:        s.networks,
		CacheTTLSeconds: s.cacheTTL.Seconds(),
	})
}

// networksHandler reports the cache state of every configured network.
func (s *Server) networksHandler(w http.ResponseWriter, _ *http.Request) {
	states := make([]networkState, 0, len(s.networks))
	for _, network := range s.networks {
		state := networkState{Network: network}
		if entry, ok := s.cache.get(network); ok {
			refreshedAt := entry.RefreshedAt
			state.Cached = true
			state.Stale = !s.cache.fresh(entry)
			state.Devices = len(entry.Devices)
			state.RefreshedAt = &refreshedAt
			state.ScanID = entry.ScanID
		}
		states = append(states, state)
	}
	s.sendDataResponse(w, states)
}

// devicesHandler serves one network's devices, scanning when the cache
// cannot answer.
func (s *Server) devicesHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	s.sendDataResponse(w, result)
}

// groupsHandler serves one network's devices grouped by product name.
// Cache and refresh behavior matches the devices endpoint.
func (s *Server) groupsHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadResult(w, r)
	if !ok {
		return
	}
	s.sendDataResponse(w, result.Devices.GroupByProduct())
}

// scanHandler forces a refresh of the requested network. A forced refresh
// is an explicit operator action, so any subnet that parses is allowed,
// configured or not.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
		return
	}
	if req.Network == "" {
		s.sendErrorResponse(w, http.StatusBadRequest, "network is required")
		return
	}

	subnet, err := model.NewSubnet(req.Network)
	if err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.refresh(r.Context(), subnet.String())
	switch {
	case errors.Is(err, ErrScanRunning):
		s.sendErrorResponse(w, http.StatusConflict, ErrScanRunning.Error())
	case err != nil:
		s.sendErrorResponse(w, http.StatusInternalServerError, err.Error())
	default:
		s.sendDataResponse(w, newScanResult(subnet.String(), entry, false))
	}
}

// loadResult resolves the network parameter and returns its scan result,
// refreshing per the cache rules. It writes the error response itself and
// returns false when the request cannot be answered.
func (s *Server) loadResult(w http.ResponseWriter, r *http.Request) (scanResult, bool) {
	network, ok := s.resolveNetwork(w, r)
	if !ok {
		return scanResult{}, false
	}

	cached, found := s.cache.get(network)
	if found && s.cache.fresh(cached) {
		return newScanResult(network, cached, false), true
	}

	entry, err := s.refresh(r.Context(), network)
	switch {
	case err == nil:
		return newScanResult(network, entry, false), true
	case errors.Is(err, ErrScanRunning):
		if found {
			// Another scan holds the gate; stale data beats no data.
			return newScanResult(network, cached, true), true
		}
		s.sendErrorResponse(w, http.StatusServiceUnavailable, "a scan is already running, retry shortly")
		return scanResult{}, false
	default:
		s.sendErrorResponse(w, http.StatusInternalServerError, err.Error())
		return scanResult{}, false
	}
}

// resolveNetwork extracts and normalizes the network query parameter.
// Networks outside the configured list are rejected unless adhoc=true, so
// a typo in a dashboard URL cannot sweep an unintended subnet.
func (s *Server) resolveNetwork(w http.ResponseWriter, r *http.Request) (string, bool) {
	spec := r.URL.Query().Get("network")
	if spec == "" {
		s.sendErrorResponse(w, http.StatusBadRequest, "network query parameter is required")
		return "", false
	}

	subnet, err := model.NewSubnet(spec)
	if err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, err.Error())
		return "", false
	}

	network := subnet.String()
	if _, ok := s.configured[network]; !ok && r.URL.Query().Get("adhoc") != "true" {
		s.sendErrorResponse(w, http.StatusNotFound,
			fmt.Sprintf("network %s is not configured; pass adhoc=true to scan it anyway", network))
		return "", false
	}
	return network, true
}

// newScanResult builds the response payload for one cache entry.
func newScanResult(network string, entry cacheEntry, stale bool) scanResult {
	devices := entry.Devices
	if devices == nil {
		devices = model.Devices{}
	}
	return scanResult{
		Network:     network,
		ScanID:      entry.ScanID,
		RefreshedAt: entry.RefreshedAt,
		Stale:       stale,
		Devices:     devices,
	}
}

// sendDataResponse writes a success envelope carrying data.
func (s *Server) sendDataResponse(w http.ResponseWriter, data any) {
	s.sendJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

// sendErrorResponse writes a failure envelope with the given status code.
func (s *Server) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.sendJSON(w, statusCode, apiResponse{Success: false, Message: message})
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}
