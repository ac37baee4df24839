package httptransport

import (
	"log/slog"

	"github.com/Sunny-JP/hw-ba-cafe/internal/repository"
	"github.com/Sunny-JP/hw-ba-cafe/internal/transport/http/handler"
	"github.com/Sunny-JP/hw-ba-cafe/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, tapHandler *handler.TapHandler, authHandler *handler.AuthHandler, profileRepo repository.ProfileRepository, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public auth routes
	auth := r.Group("/auth")
	auth.POST("/magic-link", authHandler.RequestMagicLink)
	auth.GET("/verify", authHandler.Verify)

	authMW := middleware.Auth(jwtKey)
	ensureProfile := middleware.EnsureProfile(profileRepo, logger)

	// Protected tap routes
	tap := r.Group("/tap", authMW, ensureProfile)
	tap.POST("", tapHandler.Submit)
	tap.GET("/session", tapHandler.Session)
	tap.GET("/history", tapHandler.History)

	return r
}
