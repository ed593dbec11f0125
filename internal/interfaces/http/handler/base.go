package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/cart"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/infrastructure/logger"
	"github.com/sadsod/storefront/internal/interfaces/http/dto"
	"github.com/sadsod/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessPage sends a page of items with pagination meta
func (h *BaseHandler) SuccessPage(c *gin.Context, page any, total int64, pageNum, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(page, total, pageNum, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindingError reports a request that could not be bound or failed validation tags
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", middleware.GetRequestID(c), details))
		return
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidNumber, "A numeric parameter is not a valid number")
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body could not be parsed")
}

// HandleError converts application errors to HTTP responses.
// Errors without a known mapping are logged and reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		details := make([]dto.ValidationDetail, len(validationErr.Fields))
		for i, field := range validationErr.Fields {
			details[i] = dto.ValidationDetail{Field: field, Message: "This field is required"}
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(validationErr.Error(), requestID, details))
		return
	}

	var parseErr *shared.ParseError
	if errors.As(err, &parseErr) {
		resp := dto.NewValidationErrorResponse(parseErr.Error(), requestID,
			[]dto.ValidationDetail{{Field: parseErr.Field, Message: parseErr.Err.Error(), Value: parseErr.Value}})
		resp.Error.Code = parseErrorCode(parseErr)
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if status := dto.GetHTTPStatus(code); status != http.StatusInternalServerError {
			c.JSON(status, dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
			return
		}
	}

	logger.FromContext(c.Request.Context()).Error("Unhandled request error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// parseErrorCode reports over-limit quantities as ERR_INVALID_QUANTITY,
// malformed numbers as ERR_INVALID_NUMBER and any other unparseable value
// as a plain validation failure
func parseErrorCode(err *shared.ParseError) string {
	if errors.Is(err.Err, cart.ErrQuantityTooLarge) {
		return dto.ErrCodeInvalidQuantity
	}
	if errors.Is(err.Err, strconv.ErrSyntax) || errors.Is(err.Err, strconv.ErrRange) ||
		errors.Is(err.Err, shared.ErrNegativeValue) {
		return dto.ErrCodeInvalidNumber
	}
	return dto.ErrCodeValidation
}

// parseIDParam reads a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, fmt.Sprintf("Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}
