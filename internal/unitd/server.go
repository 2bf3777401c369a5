package unitd

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/dispatch"
	"github.com/danmuck/charmctl/internal/observability"
)

// eventRequest is the JSON body for event/action dispatch routes.
type eventRequest struct {
	ID     string            `json:"id"`
	Params map[string]string `json:"params"`
}

// router builds the unit's HTTP surface.
func (s *Service) router() *gin.Engine {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(s.cfg.Unit))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(s.cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"unit":   s.cfg.Unit,
			"uptime": time.Since(s.startedAt).String(),
		})
	})

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.statusView())
	})

	r.GET("/units", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"units": s.Units()})
	})

	r.GET("/events", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"events": s.EventNames()})
	})

	r.GET("/deliveries", func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v > 0 {
				limit = v
			}
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": s.RecentDeliveries(limit)})
	})

	r.POST("/events/:event", func(c *gin.Context) {
		s.handleDispatchRoute(c, c.Param("event"))
	})
	// actions are events too; the alias keeps operator URLs honest
	r.POST("/actions/:action", func(c *gin.Context) {
		s.handleDispatchRoute(c, c.Param("action"))
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (s *Service) handleDispatchRoute(c *gin.Context, event string) {
	var req eventRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	outcome, err := s.Dispatch(dispatch.Event{ID: req.ID, Name: event, Params: req.Params})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dispatch.ErrUnknownEvent) {
			status = http.StatusNotFound
		} else if errors.Is(err, dispatch.ErrInvalidEvent) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "status": s.statusView()})
}

// statusView is the composite projection served to operators. It is
// shared by the HTTP and admin control surfaces.
func (s *Service) statusView() map[string]any {
	status := s.Status()
	updated, _ := s.charm.Updated()
	return map[string]any{
		"unit":    s.cfg.Unit,
		"kind":    status.Kind,
		"message": status.Message,
		"state":   s.charm.State(),
		"stale":   s.charm.Stale(),
		"running": s.charm.IsRunning(),
		"synced":  s.charm.IsSynced(),
		"updated": updated,
		"syncs":   s.charm.Syncs(),
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
