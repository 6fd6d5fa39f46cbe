package handlers

import (
	"net/http"
	"time"

	"serbisyo/services/monitor"
	"serbisyo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MonitorHandler exposes payment metrics and anomaly reports to admins.
type MonitorHandler struct {
	Engine *monitor.Engine
	Logger *zap.Logger
}

func NewMonitorHandler(engine *monitor.Engine, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{Engine: engine, Logger: logger}
}

// GetMetrics returns aggregated payment metrics over a date range,
// defaulting to the trailing seven days.
func (h *MonitorHandler) GetMetrics(c *gin.Context) {
	to := c.DefaultQuery("to", time.Now().Format("2006-01-02"))
	from := c.DefaultQuery("from", time.Now().AddDate(0, 0, -7).Format("2006-01-02"))

	summary, err := h.Engine.GetMetrics(c.Request.Context(), from, to)
	if err != nil {
		h.Logger.Error("failed to load metrics", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load metrics", "Please try again later")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAnomalies runs the anomaly sweep over recent payment activity.
func (h *MonitorHandler) GetAnomalies(c *gin.Context) {
	report, err := h.Engine.CheckAnomalies(c.Request.Context())
	if err != nil {
		h.Logger.Error("anomaly sweep failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to check anomalies", "Please try again later")
		return
	}
	c.JSON(http.StatusOK, report)
}
