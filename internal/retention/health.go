package retention

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Sweeper) HealthHandler() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	// liveness: process is up

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"ok": true,
		})
	})

	// readiness: the sweep loop is running
	r.GET("/readyz", func(c *gin.Context) {
		if !s.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "sweeps": s.Metrics()})
	})

	if s.scrape != nil {
		r.GET("/metrics", gin.WrapH(s.scrape))
	}

	return r
}
