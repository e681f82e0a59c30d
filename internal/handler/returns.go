package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/returns-service/internal/errs"
	"github.com/psds-microservice/returns-service/internal/patch"
	"github.com/psds-microservice/returns-service/internal/query"
	"github.com/psds-microservice/returns-service/internal/service"
)

const (
	msgNotConfigured = "DATABASE_URL is not configured"
	msgNotFound      = "No row found for this ticket_link"
	msgInvalidBody   = "Invalid JSON body"
	msgDatabase      = "Database error"
)

// ReturnHandler serves /api/returns and /api/filters. A nil svc means no
// data store is configured and every call answers 503.
type ReturnHandler struct {
	svc service.ReturnServicer
	log *slog.Logger
}

func NewReturnHandler(svc service.ReturnServicer, log *slog.Logger) *ReturnHandler {
	return &ReturnHandler{svc: svc, log: log}
}

func (h *ReturnHandler) List(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	res, err := h.svc.List(c.Request.Context(), query.FromValues(c.Request.URL.Query()))
	if err != nil {
		h.fail(c, "list returns", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReturnHandler) Update(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req patch.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	change, err := req.Validate()
	if err != nil {
		h.fail(c, "update return", err)
		return
	}
	row, err := h.svc.Update(c.Request.Context(), change)
	if err != nil {
		h.fail(c, "update return", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row})
}

func (h *ReturnHandler) Filters(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	opts, err := h.svc.FilterOptions(c.Request.Context())
	if err != nil {
		h.fail(c, "filter options", err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *ReturnHandler) configured(c *gin.Context) bool {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgNotConfigured})
		return false
	}
	return true
}

func (h *ReturnHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrReturnNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	case errors.Is(err, errs.ErrStoreNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgNotConfigured})
	default:
		h.log.ErrorContext(c.Request.Context(), op+" failed", "err", err, "request_id", c.GetString(RequestIDKey))
		msg := err.Error()
		if msg == "" {
			msg = msgDatabase
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
