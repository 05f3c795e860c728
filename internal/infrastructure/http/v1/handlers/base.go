// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"retailpos/internal/core/apperror"
	appctx "retailpos/internal/core/context"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/infrastructure/http/v1/dto"
	"retailpos/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	// cal reads query dates as calendar days in the shop's location
	cal *analytics.Aggregator
}

// NewBaseHandler creates a new base handler. A nil cal uses the local zone.
func NewBaseHandler(cal *analytics.Aggregator) *BaseHandler {
	if cal == nil {
		cal = analytics.New(nil)
	}
	return &BaseHandler{cal: cal}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the gin context and aborts the request.
// middleware.ErrorHandler writes the JSON body.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParamID parses the :id path parameter.
func (h *BaseHandler) ParamID(c *gin.Context) (id.ID, bool) {
	v, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "id"))
		return v, false
	}
	return v, true
}

// ParseDate reads a YYYY-MM-DD query value as local midnight.
func (h *BaseHandler) ParseDate(field, value string) (time.Time, error) {
	t, ok := h.cal.ParseDate(value)
	if !ok {
		return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("field", field)
	}
	return t, nil
}

// DateRange parses from and to; empty values default to today.
func (h *BaseHandler) DateRange(c *gin.Context, from, to string) (time.Time, time.Time, bool) {
	today := h.cal.StartOfDay(time.Now())
	start, end := today, today

	var err error
	if from != "" {
		if start, err = h.ParseDate("from", from); err != nil {
			h.Error(c, err)
			return start, end, false
		}
	}
	if to != "" {
		if end, err = h.ParseDate("to", to); err != nil {
			h.Error(c, err)
			return start, end, false
		}
	}
	if start.After(end) {
		h.Error(c, apperror.NewValidation("from must not be after to"))
		return start, end, false
	}
	return start, end, true
}

// SellerScope decides whose sales a request may see. Sellers always see
// their own; admins see everyone unless they pass sellerId.
func (h *BaseHandler) SellerScope(c *gin.Context, requested string) (*id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return nil, false
	}

	if !user.IsAdmin() {
		own, err := id.Parse(user.UserID)
		if err != nil {
			h.Error(c, apperror.NewUnauthorized("invalid user id"))
			return nil, false
		}
		return &own, true
	}

	sellerID, err := dto.ParseOptionalID("sellerId", &requested)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return sellerID, true
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	// 204 must replay as 204 with empty body.
	middleware.CompleteIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	response := dto.SuccessResponse{Success: true, Message: message}
	h.OK(c, response)
}
