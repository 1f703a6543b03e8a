package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type HealthCheck struct {
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Duration string    `json:"duration"`
	LastRun  time.Time `json:"last_run"`
}

type HealthCheckFunc func(ctx context.Context) error

// HealthChecker runs every registered check on each call to Run.
type HealthChecker struct {
	mu      sync.RWMutex
	checks  map[string]HealthCheckFunc
	timeout time.Duration
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]HealthCheckFunc), timeout: 5 * time.Second}
}

func (h *HealthChecker) Register(name string, fn HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = fn
}

// Run executes the checks concurrently, each bounded by the checker timeout.
func (h *HealthChecker) Run(ctx context.Context) []HealthCheck {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	fns := make(map[string]HealthCheckFunc, len(h.checks))
	for name, fn := range h.checks {
		names = append(names, name)
		fns[name] = fn
	}
	timeout := h.timeout
	h.mu.RUnlock()
	sort.Strings(names)

	results := make([]HealthCheck, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			result := HealthCheck{Name: name, Status: StatusHealthy, LastRun: start}
			if err := fns[name](checkCtx); err != nil {
				result.Status = StatusUnhealthy
				result.Message = err.Error()
			}
			result.Duration = time.Since(start).String()
			results[i] = result
		}(i, name)
	}
	wg.Wait()
	return results
}

func overall(checks []HealthCheck) string {
	for _, check := range checks {
		if check.Status != StatusHealthy {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}

func (m *Monitor) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := m.health.Run(c.Request.Context())
		status := overall(checks)

		code := http.StatusOK
		if status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": m.now(),
			"checks":    checks,
			"uptime":    m.Uptime().String(),
		})
	}
}

func (m *Monitor) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if overall(m.health.Run(c.Request.Context())) != StatusHealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "timestamp": m.now()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": m.now()})
	}
}

func (m *Monitor) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": m.now(),
			"uptime":    m.Uptime().String(),
		})
	}
}
