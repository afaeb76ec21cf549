package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/dto"
	"github.com/antonhoreis/analytics-dashboard/internal/service"
)

type Handler struct {
	dashboardService service.DashboardServicer
	router           *gin.Engine
	log              *zap.Logger
}

func NewHandler(dashboardService service.DashboardServicer, log *zap.Logger) *Handler {
	h := &Handler{
		dashboardService: dashboardService,
		router:           gin.Default(),
		log:              log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/attribution/daily", h.getAttributionTable)
	h.router.GET("/funnel/transitions", h.getFunnelTransitions)
	h.router.GET("/funnel/stats", h.getFunnelStats)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// getAttributionTable handles GET /attribution/daily
func (h *Handler) getAttributionTable(c *gin.Context) {
	var req dto.AttributionTableRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid attribution table request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.dashboardService.GetDailyAttributionTable(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to build attribution table",
			zap.String("from", req.From), zap.String("to", req.To))
		return
	}

	c.JSON(http.StatusOK, response)
}

// getFunnelTransitions handles GET /funnel/transitions
func (h *Handler) getFunnelTransitions(c *gin.Context) {
	response, err := h.dashboardService.GetFunnelTransitions(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to build funnel graph")
		return
	}

	c.JSON(http.StatusOK, response)
}

// getFunnelStats handles GET /funnel/stats
func (h *Handler) getFunnelStats(c *gin.Context) {
	response, err := h.dashboardService.GetFunnelStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to build funnel stats")
		return
	}

	c.JSON(http.StatusOK, response)
}

// respondError maps pipeline errors to status codes: request validation to
// 400, a not-yet-seeded attribution store to 503, everything else to 500.
func (h *Handler) respondError(c *gin.Context, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		h.log.Warn(msg, append(fields, zap.Error(err))...)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrStoreNotSeeded):
		h.log.Error(msg, append(fields, zap.Error(err))...)
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "store_not_seeded",
			Message: err.Error(),
		})
	default:
		h.log.Error(msg, append(fields, zap.Error(err))...)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
