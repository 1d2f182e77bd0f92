package api

import "github.com/gin-gonic/gin"

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (depends on cache backend connectivity).
type HealthHandler struct {
	cachePing func() error // Function to check cache backend connectivity
}

// NewHealthHandler constructs a HealthHandler with the provided cachePing function.
//
// Parameters:
//   - cachePing (func() error): A function used to check if the remote cache is
//     reachable. Typically a wrapper around the Redis PING command. May be nil
//     when no remote cache is configured.
//
// Returns:
//   - *HealthHandler: A new handler instance.
func NewHealthHandler(cachePing func() error) *HealthHandler {
	return &HealthHandler{cachePing: cachePing}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: Returns 200 OK if cachePing succeeds, 503 if the cache backend is not reachable.
//
// Parameters:
//   - r (*gin.Engine): The Gin router to register routes on.
func (h *HealthHandler) Register(r *gin.Engine) {
	// Liveness probe (just checks if the service is up)
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness probe (checks the remote cache connection)
	// @Summary      Readiness probe
	// @Description  Returns ready if the service dependencies (cache) are reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]string
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		if h.cachePing != nil && h.cachePing() != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
}
