package health

import (
	"net/http"
	"time"

	"github.com/hilthontt/embermud/internal/infrastructure/json"
)

var startTime = time.Now()

// Probe reports whether one dependency is reachable.
type Probe func() bool

type Handler struct {
	probes map[string]Probe
}

func NewHandler() *Handler {
	return &Handler{probes: make(map[string]Probe)}
}

// WithProbe registers a named dependency check. Probes run on every health
// request; keep them cheap.
func (h *Handler) WithProbe(name string, probe Probe) *Handler {
	h.probes[name] = probe
	return h
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	if len(h.probes) > 0 {
		resp.Dependencies = make(map[string]string, len(h.probes))
		for name, probe := range h.probes {
			if probe() {
				resp.Dependencies[name] = "ok"
				continue
			}
			resp.Dependencies[name] = "down"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	_ = json.Write(w, status, resp)
}
