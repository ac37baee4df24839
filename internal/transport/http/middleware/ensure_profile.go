package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Sunny-JP/hw-ba-cafe/internal/repository"
	"github.com/gin-gonic/gin"
)

// EnsureProfile runs after Auth. It upserts the profile row so tap and
// ticket writes never hit a missing FK, even on a first-ever request.
func EnsureProfile(repo repository.ProfileRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := c.GetString("profileID")
		if err := repo.Upsert(c.Request.Context(), profileID); err != nil {
			logger.ErrorContext(c.Request.Context(), "ensure profile upsert", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}
		c.Next()
	}
}
