package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message).WithRequestID(middleware.GetRequestID(c)))
}

// HandleError converts err into the error envelope. Domain errors keep their code,
// message and details; anything else is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponse(domainErr.Code, domainErr.Message).
				WithRequestID(middleware.GetRequestID(c)).
				WithErrors(domainErr.Details))
		return
	}

	logger.GetGinLogger(c).Error("Unhandled request error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// ValidationError sends a 400 for a single offending field
func (h *BaseHandler) ValidationError(c *gin.Context, field, message string) {
	h.HandleError(c, shared.NewValidationError(field, message))
}

// parseID reads a UUID path parameter. On failure the response is already written.
func (h *BaseHandler) parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ValidationError(c, name, "Invalid UUID format")
		return uuid.Nil, false
	}
	return id, true
}

// requestLanguage resolves ?lang= first, then Accept-Language
func requestLanguage(c *gin.Context) language.Tag {
	return catalog.MatchLanguage(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// actor names the authenticated user in history rows and events
func actor(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
