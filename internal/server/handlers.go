package server

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/nholik/devops-course/internal/sysinfo"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Runtime describes process uptime and the current time.
type Runtime struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	UptimeHuman   string `json:"uptime_human"`
	CurrentTime   string `json:"current_time"`
	Timezone      string `json:"timezone"`
}

// RequestInfo echoes details of the incoming request.
type RequestInfo struct {
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`
	Method    string `json:"method"`
	Path      string `json:"path"`
}

// Info is the GET / response body.
type Info struct {
	Service   sysinfo.Service    `json:"service"`
	System    sysinfo.System     `json:"system"`
	Runtime   Runtime            `json:"runtime"`
	Request   RequestInfo        `json:"request"`
	Endpoints []sysinfo.Endpoint `json:"endpoints"`
}

func indexHandler(service sysinfo.Service, uptime sysinfo.Uptime, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := now().UTC()
		seconds := uptime.Seconds(current)

		writeJSON(w, http.StatusOK, Info{
			Service: service,
			System:  sysinfo.CollectSystem(),
			Runtime: Runtime{
				UptimeSeconds: seconds,
				UptimeHuman:   sysinfo.Human(seconds),
				CurrentTime:   current.Format(time.RFC3339Nano),
				Timezone:      "UTC",
			},
			Request:   requestInfo(r),
			Endpoints: sysinfo.Endpoints(),
		})
	}
}

func requestInfo(r *http.Request) RequestInfo {
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = "Unknown"
	}
	return RequestInfo{
		ClientIP:  clientIP(r),
		UserAgent: userAgent,
		Method:    r.Method,
		Path:      r.URL.Path,
	}
}

func clientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorBody{
		Error:   "Not Found",
		Message: "Endpoint does not exist",
		Path:    r.URL.Path,
	})
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{
		Error:   "Method Not Allowed",
		Message: "Method " + r.Method + " is not supported for this endpoint",
		Path:    r.URL.Path,
	})
}

func internalErrorBody() ErrorBody {
	return ErrorBody{
		Error:   "Internal Server Error",
		Message: "An unexpected error occurred",
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}
