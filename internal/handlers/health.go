package handlers

import (
	"net/http"
	"runtime"
	"time"

	"photoframe/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status           string `json:"status"`
	StorageReachable bool   `json:"storageReachable"`
	Version          string `json:"version"`
	Uptime           string `json:"uptime"`
	Photos           int    `json:"photos"`

	Indexing      bool   `json:"indexing"`
	IndexMode     string `json:"indexMode,omitempty"`
	PhotosScanned int64  `json:"photosScanned"`
	LastIndexed   string `json:"lastIndexed,omitempty"`
	LastError     string `json:"lastError,omitempty"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports storage reachability and indexer progress. It
// returns 503 while the photo root is unreachable.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	progress := h.index.GetProgress()
	reachable := h.frame.ExistenceCheck()

	response := HealthResponse{
		Status:           statusHealthy,
		StorageReachable: reachable,
		Version:          startup.Version,
		Uptime:           time.Since(h.startTime).Round(time.Second).String(),
		Photos:           h.library.Len(),
		Indexing:         progress.IsIndexing,
		IndexMode:        progress.Mode,
		PhotosScanned:    progress.PhotosScanned,
		GoVersion:        runtime.Version(),
		NumGoroutine:     runtime.NumGoroutine(),
	}

	if last := h.index.LastIndexTime(); !last.IsZero() {
		response.LastIndexed = last.Format(time.RFC3339)
	}
	if err := h.index.LastError(); err != nil {
		response.LastError = err.Error()
		response.Status = statusDegraded
	}

	status := http.StatusOK
	if !reachable {
		response.Status = statusDegraded
		status = http.StatusServiceUnavailable
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONStatus(w, "alive")
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, startup.GetBuildInfo())
}
