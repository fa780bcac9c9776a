package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/quote-service/internal/circuitbreaker"
)

const readinessTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

type probe struct {
	name     string
	checker  HealthChecker
	required bool
}

// HealthHandler serves the liveness and readiness probes. Readiness fails
// when a required dependency does not answer or a registered breaker is open;
// optional dependencies only show up as degraded.
type HealthHandler struct {
	probes   []probe
	breakers map[string]*circuitbreaker.CircuitBreaker
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{breakers: make(map[string]*circuitbreaker.CircuitBreaker)}
}

// AddChecker registers a dependency readiness depends on.
func (h *HealthHandler) AddChecker(name string, checker HealthChecker) {
	h.add(name, checker, true)
}

// AddOptionalChecker registers a dependency that is reported but does not
// fail readiness.
func (h *HealthHandler) AddOptionalChecker(name string, checker HealthChecker) {
	h.add(name, checker, false)
}

func (h *HealthHandler) add(name string, checker HealthChecker, required bool) {
	if checker != nil {
		h.probes = append(h.probes, probe{name: name, checker: checker, required: required})
	}
}

// RegisterCircuitBreaker reports cb as <name>_circuit.
func (h *HealthHandler) RegisterCircuitBreaker(name string, cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		h.breakers[name] = cb
	}
}

func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness probe endpoint.
// @Summary     Liveness probe
// @Description Returns OK while the process is running.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles the readiness probe endpoint.
// @Summary     Readiness probe
// @Description Probes every dependency concurrently. Returns 503 when a required one fails or a circuit breaker is open.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]interface{} "Service is ready"
// @Failure     503 {object} map[string]interface{} "Service is not ready"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks, ready := h.probe(ctx)
	for name, cb := range h.breakers {
		checks[name+"_circuit"] = cb.State().String()
		// half-open breakers still take traffic
		if cb.IsOpen() {
			ready = false
		}
	}
	if len(checks) == 0 {
		checks["service"] = "ok"
	}

	status, label := http.StatusOK, "ok"
	if !ready {
		status, label = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(status, gin.H{"status": label, "checks": checks})
}

// probe runs every checker at once so one slow dependency costs the probe
// its own latency, not the sum.
func (h *HealthHandler) probe(ctx context.Context) (map[string]string, bool) {
	var (
		mu     sync.Mutex
		checks = make(map[string]string, len(h.probes)+len(h.breakers))
		ready  = true
	)

	var g errgroup.Group
	for _, p := range h.probes {
		g.Go(func() error {
			err := p.checker.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				checks[p.name] = "ok"
			case p.required:
				checks[p.name] = err.Error()
				ready = false
			default:
				checks[p.name] = "degraded: " + err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	return checks, ready
}
