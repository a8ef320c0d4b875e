package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainUser "property-marketplace/internal/domain/user"
	"property-marketplace/internal/logger"
	"property-marketplace/internal/middleware"
	appErrors "property-marketplace/pkg/errors"
	"property-marketplace/pkg/utils"
)

// respondWithError is the only place error kinds become status codes.
func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrDuplicateEmail):
		utils.ErrorResponse(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		middleware.Unauthorized(c, "Incorrect email or password")
	case errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrTokenExpired),
		errors.Is(err, appErrors.ErrUnknownSubject):
		middleware.Unauthorized(c, "Could not validate credentials")
	case errors.Is(err, appErrors.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, "Not enough permissions")
	case errors.Is(err, appErrors.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, appErrors.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// invalidBody answers a request whose body could not be bound.
func invalidBody(c *gin.Context, bindErr error) {
	respondWithError(c, fmt.Errorf("%w: %v", appErrors.ErrInvalidInput, bindErr))
}

// currentUser fetches the authenticated user or answers 401.
func currentUser(c *gin.Context) (*domainUser.User, bool) {
	user, ok := middleware.GetIdentity(c)
	if !ok {
		middleware.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return user, true
}
