package server

import (
	"net/http"
	"safe-space/contract"
	"safe-space/runtime/workers"
)

type healthResponse struct {
	Status  string                  `json:"status"`
	Process *workers.HealthSnapshot `json:"process,omitempty"`
}

// HealthHandler answers liveness probes, pinging the store on every request.
type HealthHandler struct {
	store    contract.Pinger
	snapshot func() workers.HealthSnapshot
}

// NewHealthHandler builds the handler; snapshot may be nil.
func NewHealthHandler(store contract.Pinger, snapshot func() workers.HealthSnapshot) *HealthHandler {
	return &HealthHandler{store: store, snapshot: snapshot}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if err := h.store.Ping(); err != nil {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.snapshot != nil {
		snapshot := h.snapshot()
		resp.Process = &snapshot
	}
	writeJSON(w, status, resp)
}
