package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"property-marketplace/internal/config"
)

// CORSMiddleware allows every origin when none are configured or "*" is
// listed. Bearer tokens travel in the Authorization header, so the header is
// always allowed and credentials are never combined with a wildcard origin.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	allowHeaders := cfg.AllowedHeaders
	if !slices.ContainsFunc(allowHeaders, isAuthorizationHeader) {
		allowHeaders = append(slices.Clone(allowHeaders), "Authorization")
	}

	corsConfig := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  allowHeaders,
		ExposeHeaders: cfg.ExposedHeaders,
		MaxAge:        time.Duration(cfg.MaxAge) * time.Second,
	}

	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = cfg.AllowCredentials
	}

	return cors.New(corsConfig)
}

func isAuthorizationHeader(h string) bool {
	return http.CanonicalHeaderKey(h) == "Authorization"
}
