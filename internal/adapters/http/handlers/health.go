// Package handlers binds the public payment API and the internal /-/ probes
// to gin. Handlers parse and render; the app services do the work.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
	"github.com/jsamuelsen/pay-public-api/internal/ports"
)

// DefaultReadinessTimeout bounds the connector health checks behind /-/ready.
const DefaultReadinessTimeout = 5 * time.Second

// BuildInfo is served from /-/build. Version, Commit and BuildTime come from
// ldflags; GoVersion is read from the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// NewBuildInfo fills in the Go version and, for binaries built without
// ldflags, the VCS revision and time recorded by the toolchain.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	info := BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.BuildTime == "":
				info.BuildTime = s.Value
			}
		}
	}

	return info
}

// HealthHandler serves the /-/ probe group.
type HealthHandler struct {
	registry         ports.HealthRegistry
	build            BuildInfo
	readinessTimeout time.Duration
}

// NewHealthHandler returns a handler whose readiness probe waits at most
// DefaultReadinessTimeout for the connectors.
func NewHealthHandler(registry ports.HealthRegistry, build BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:         registry,
		build:            build,
		readinessTimeout: DefaultReadinessTimeout,
	}
}

// WithReadinessTimeout sets how long /-/ready waits for the connectors.
// Non-positive values leave the current timeout in place.
func (h *HealthHandler) WithReadinessTimeout(d time.Duration) *HealthHandler {
	if d > 0 {
		h.readinessTimeout = d
	}

	return h
}

type probeResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness answers 200 while the process can serve HTTP. It never touches
// the connectors, so a connector outage does not restart the pod.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, probeResponse{Status: "ok"})
}

// Readiness answers 200 when every registered connector passes its
// healthcheck and 503 otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.registry == nil {
		c.JSON(http.StatusOK, probeResponse{Status: string(ports.HealthStatusHealthy)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.readinessTimeout)
	defer cancel()

	report := h.registry.CheckAll(ctx)
	if report.Status == ports.HealthStatusHealthy {
		c.JSON(http.StatusOK, probeResponse{Status: string(report.Status), Checks: report.Checks})
		return
	}

	logger := logging.FromContext(c.Request.Context())
	for name, check := range report.Checks {
		if check.Status != ports.HealthStatusUnhealthy {
			continue
		}

		logger.WarnContext(ctx, "dependency not ready",
			slog.String("dependency", name),
			slog.String("reason", check.Message),
			slog.Duration("duration", check.Duration))
	}

	c.JSON(http.StatusServiceUnavailable, probeResponse{Status: string(report.Status), Checks: report.Checks})
}

// Build serves the build metadata.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}

// Mount registers the probes under /-/ on r:
//
//	GET /-/live     liveness
//	GET /-/ready    connector readiness
//	GET /-/build    build metadata
//	GET /-/metrics  Prometheus exposition
func (h *HealthHandler) Mount(r gin.IRouter) {
	probes := r.Group("/-")
	probes.GET("/live", h.Liveness)
	probes.GET("/ready", h.Readiness)
	probes.GET("/build", h.Build)
	probes.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
