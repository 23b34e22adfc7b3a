package sysinfo

import (
	"os"
	"runtime"
	"strings"
)

const (
	ServiceName        = "devops-info-service"
	ServiceDescription = "DevOps course info service"
	ServiceFramework   = "chi"
)

// Service describes the running service.
type Service struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Framework   string `json:"framework"`
}

// NewService returns the service metadata for the given version.
func NewService(version string) Service {
	return Service{
		Name:        ServiceName,
		Version:     version,
		Description: ServiceDescription,
		Framework:   ServiceFramework,
	}
}

// System describes the host the service runs on.
type System struct {
	Hostname        string `json:"hostname"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	Architecture    string `json:"architecture"`
	CPUCount        int    `json:"cpu_count"`
	GoVersion       string `json:"go_version"`
}

// osReleasePath holds the kernel release on Linux.
var osReleasePath = "/proc/sys/kernel/osrelease"

// CollectSystem gathers host information.
func CollectSystem() System {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}

	platform := platformName(runtime.GOOS)
	arch := machineName(runtime.GOARCH)

	return System{
		Hostname:        hostname,
		Platform:        platform,
		PlatformVersion: platformVersion(platform, arch),
		Architecture:    arch,
		CPUCount:        runtime.NumCPU(),
		GoVersion:       runtime.Version(),
	}
}

func platformName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	default:
		return goos
	}
}

func machineName(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i386"
	default:
		return goarch
	}
}

// platformVersion renders "<platform>-<kernel release>-<machine>", dropping
// the release when it cannot be read.
func platformVersion(platform, arch string) string {
	release := ""
	if data, err := os.ReadFile(osReleasePath); err == nil {
		release = strings.TrimSpace(string(data))
	}
	if release == "" {
		return platform + "-" + arch
	}
	return platform + "-" + release + "-" + arch
}

// Endpoint documents one route of the service.
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// Endpoints lists the routes served by info-service.
func Endpoints() []Endpoint {
	return []Endpoint{
		{Path: "/", Method: "GET", Description: "Service information"},
		{Path: "/health", Method: "GET", Description: "Health check"},
		{Path: "/metrics", Method: "GET", Description: "Prometheus metrics"},
	}
}
