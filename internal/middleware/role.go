package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-marketplace/internal/auth"
	"property-marketplace/internal/logger"
	"property-marketplace/pkg/utils"
)

// SellerOnly must run after AuthMiddleware.
func SellerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetIdentity(c)
		if !ok {
			Unauthorized(c, msgNotAuthenticated)
			return
		}

		if !auth.CanCreateListing(user) {
			logger.Warn("Non-seller attempted a seller action",
				zap.String("request_id", GetRequestID(c)),
				zap.Int64("user_id", user.ID),
				zap.String("path", c.Request.URL.Path),
				zap.String("event", "listing_forbidden"),
			)
			utils.ErrorResponse(c, http.StatusForbidden, "Only sellers can create listings")
			return
		}

		c.Next()
	}
}
