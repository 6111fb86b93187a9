package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resteretter/mailcow-monitor/internal/monitor"
)

// Router wires HTTP handlers over the snapshot store and the history buffer.
// All monitoring endpoints are read-only; the poll loop is the only writer.
type Router struct {
	store   *monitor.Store
	history *monitor.History
	origins string
}

func NewRouter(store *monitor.Store, history *monitor.History, allowedOrigins string) *gin.Engine {
	r := &Router{
		store:   store,
		history: history,
		origins: allowedOrigins,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), r.corsMiddleware())

	liveness := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	}
	router.GET("/healthz", liveness)
	router.GET("/health", liveness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", r.getAPIHealth)
		api.GET("/mailboxes", r.getMailboxes)
		api.GET("/forwarding", r.getForwarding)
		api.GET("/stats", r.getStats)
		api.GET("/history", r.getHistory)
		api.GET("/status", r.getStatus)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := "*"
		for _, o := range trimmed {
			if o == "*" || o == origin {
				allowed = origin
				break
			}
		}
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

// getAPIHealth reports the upstream probe result from the last cycle.
func (r *Router) getAPIHealth(c *gin.Context) {
	summary := r.store.Current()
	if summary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data available yet"})
		return
	}
	c.JSON(http.StatusOK, summary.APIHealth)
}

func (r *Router) getMailboxes(c *gin.Context) {
	summary := r.store.Current()
	if summary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data available yet"})
		return
	}
	c.JSON(http.StatusOK, summary.MailboxSummary)
}

func (r *Router) getForwarding(c *gin.Context) {
	summary := r.store.Current()
	if summary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data available yet"})
		return
	}
	c.JSON(http.StatusOK, summary.ForwardingRules)
}

func (r *Router) getStats(c *gin.Context) {
	summary := r.store.Current()
	if summary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data available yet"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (r *Router) getHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	c.JSON(http.StatusOK, r.history.Recent(limit))
}

// getStatus is the condensed view for dashboards and probes.
func (r *Router) getStatus(c *gin.Context) {
	summary := r.store.Current()
	if summary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data available yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"overall_status":  summary.OverallStatus,
		"total_mailboxes": summary.MailboxSummary.TotalMailboxes,
		"average_usage":   summary.MailboxSummary.AverageUsagePercent,
		"api_health":      summary.APIHealth.Status,
		"fetch_failed":    summary.MailboxSummary.FetchFailed,
		"mode":            summary.Mode,
		"timestamp":       summary.CollectionTimestamp,
	})
}
