package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"beacon/internal/logger"
	"beacon/pkg/errors"
	"beacon/pkg/logging"
	"beacon/pkg/models"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/api/v1/alerts", h.CreateAlert)
}

// CreateAlert accepts an alert and runs it through the dispatch pipeline.
// Suppressed and quota-dropped alerts still return 202: the drop is policy,
// not an error the caller can act on.
func (h *Handler) CreateAlert(c *gin.Context) {
	var req models.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"error_code": errors.ErrValidation.Code,
		})
		return
	}

	ctx := logging.WithAlertID(c.Request.Context(), uuid.New().String())

	if err := h.service.Dispatch(ctx, req); err != nil {
		if errors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      err.Error(),
				"error_code": errors.ErrValidation.Code,
			})
			return
		}

		h.logger.ErrorwCtx(ctx, "Alert dispatch failed",
			"error", err,
			"severity", req.Severity,
			"title", req.Title,
		)
		c.JSON(errors.ToHTTPStatus(err), gin.H{
			"error":      err.Error(),
			"error_code": errors.ErrDispatchFailed.Code,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
