package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/database"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports nil when a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Pinger is implemented by optional dependencies that can report their own
// health, e.g. the task queue.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PoolStats struct {
	Open  int `json:"open"`
	InUse int `json:"in_use"`
	Idle  int `json:"idle"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
	Pool    *PoolStats        `json:"pool,omitempty"`
}

type HealthController struct {
	db      *database.Database
	version string
	started time.Time
	names   []string
	checks  map[string]HealthCheck
}

func NewHealthController(db *database.Database, version string) *HealthController {
	h := &HealthController{
		db:      db,
		version: version,
		started: time.Now(),
		checks:  map[string]HealthCheck{},
	}
	if db != nil {
		h.AddCheck("database", db.PingContext)
	}
	return h
}

// AddCheck registers a named dependency check. Checks run in name order.
func (h *HealthController) AddCheck(name string, check HealthCheck) {
	if _, ok := h.checks[name]; !ok {
		h.names = append(h.names, name)
		sort.Strings(h.names)
	}
	h.checks[name] = check
}

func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.names)+1)
	status := "healthy"
	if h.db == nil {
		checks["database"] = "not configured"
	}
	for _, name := range h.names {
		if err := h.checks[name](ctx); err != nil {
			checks[name] = "error: " + err.Error()
			status = "unhealthy"
			continue
		}
		checks[name] = "ok"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  checks,
	}
	if h.db != nil && status == "healthy" {
		if stats, err := h.db.Stats(); err == nil {
			health.Pool = &PoolStats{Open: stats.OpenConnections, InUse: stats.InUse, Idle: stats.Idle}
		}
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
