package consumer

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/dto"
	"github.com/BarkinBalci/socials-sync-service/internal/repository"
)

// NewStatusRouter serves the consumer's side port: /health (repository reachability),
// /metrics and the per-social activity aggregate
func NewStatusRouter(repo repository.ActivityRepository, log *zap.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := repo.Ping(c.Request.Context()); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/socials/:id/activity", func(c *gin.Context) {
		getActivity(c, repo, log)
	})

	return router
}

// getActivity handles GET /socials/:id/activity
func getActivity(c *gin.Context, repo repository.ActivityRepository, log *zap.Logger) {
	socialID := strings.TrimSpace(c.Param("id"))
	if socialID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "social id is required",
		})
		return
	}

	counts, err := repo.InterestCounts(c.Request.Context(), socialID)
	if err != nil {
		log.Error("Failed to get interest counts",
			zap.Error(err),
			zap.String("social_id", socialID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	log.Debug("Interest counts retrieved",
		zap.String("social_id", socialID),
		zap.Uint64("added", counts.Added),
		zap.Uint64("removed", counts.Removed))

	c.JSON(http.StatusOK, dto.ActivityStatsResponse{
		SocialID:        counts.SocialID,
		InterestAdded:   counts.Added,
		InterestRemoved: counts.Removed,
		UniqueUsers:     counts.UniqueUsers,
		Net:             counts.Net(),
	})
}
