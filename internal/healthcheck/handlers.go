package healthcheck

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nholik/devops-course/internal/sysinfo"
)

// StatusHealthy is the only status the service reports while it can serve.
const StatusHealthy = "healthy"

// Status is the /health response body.
type Status struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HealthHandler serves /health responses.
func HealthHandler(uptime sysinfo.Uptime, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		current := now().UTC()
		writeJSON(w, http.StatusOK, Status{
			Status:        StatusHealthy,
			Timestamp:     current.Format(time.RFC3339Nano),
			UptimeSeconds: uptime.Seconds(current),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
