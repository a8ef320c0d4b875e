package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"property-marketplace/internal/auth"
	"property-marketplace/internal/config"
	"property-marketplace/internal/delivery/http/handler"
	domainProperty "property-marketplace/internal/domain/property"
	domainUser "property-marketplace/internal/domain/user"
	"property-marketplace/internal/logger"
	"property-marketplace/internal/middleware"
	"property-marketplace/internal/notification"
	"property-marketplace/internal/usecase/property"
	"property-marketplace/internal/usecase/user"
)

// Dependencies are the storage and messaging adapters chosen at startup.
type Dependencies struct {
	Users      domainUser.Repository
	Properties domainProperty.Repository
	Notifier   notification.InterestPublisher
	Health     handler.HealthChecker

	// TokenOptions are passed to the token service, e.g. auth.WithClock.
	TokenOptions []auth.TokenOption
}

func SetupRoutes(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	production := cfg.Server.Environment == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	hasher, err := auth.NewPasswordHasher(cfg.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}
	tokens, err := auth.NewTokenService([]byte(cfg.JWT.Secret), cfg.JWT.AccessTokenTTL, deps.TokenOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	authenticator := auth.NewAuthenticator(tokens, auth.NewResolver(deps.Users))

	router := gin.New()
	// Rate limiting keys on ClientIP, so X-Forwarded-For is only honoured
	// from configured proxies.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	// Order: recovery, request ID, logging, security headers, CORS, request size limit, rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(production))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	healthHandler := handler.NewHealthHandler(deps.Health)
	router.GET("/health", healthHandler.Check)

	userService, err := user.NewService(deps.Users, hasher, tokens)
	if err != nil {
		return nil, err
	}
	userHandler := handler.NewUserHandler(userService)

	propertyService := property.NewService(deps.Properties, deps.Users, deps.Notifier)
	propertyHandler := handler.NewPropertyHandler(propertyService)

	v1 := router.Group("/api/v1")
	{
		userHandler.RegisterRoutes(v1)
		propertyHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(authenticator))
		{
			userHandler.RegisterProfileRoutes(protected)
			propertyHandler.RegisterProtectedRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router, nil
}
