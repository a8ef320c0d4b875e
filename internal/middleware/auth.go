package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainUser "property-marketplace/internal/domain/user"
	"property-marketplace/internal/logger"
	appErrors "property-marketplace/pkg/errors"
	"property-marketplace/pkg/utils"
)

const (
	IdentityKey = "identity"

	bearerScheme          = "Bearer"
	authenticateHeader    = "WWW-Authenticate"
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidCredentials = "Could not validate credentials"
)

// Authenticator resolves a raw bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domainUser.User, error)
}

// AuthMiddleware authenticates every request from scratch and stores the
// resolved user under IdentityKey.
func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Unauthorized(c, msgNotAuthenticated)
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !appErrors.IsAuthentication(err) {
				logger.Error("Failed to authenticate request",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
				utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
				return
			}

			logger.Warn("Rejected bearer token",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.String("reason", err.Error()),
				zap.String("event", "authentication_failed"),
			)
			Unauthorized(c, msgInvalidCredentials)
			return
		}

		c.Set(IdentityKey, user)
		c.Next()
	}
}

// Unauthorized writes a 401 carrying the bearer challenge.
func Unauthorized(c *gin.Context, message string) {
	c.Header(authenticateHeader, bearerScheme)
	utils.ErrorResponse(c, http.StatusUnauthorized, message)
}

// GetIdentity returns the user stored by AuthMiddleware.
func GetIdentity(c *gin.Context) (*domainUser.User, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domainUser.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
