package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/lumenlearn/mastery-engine/internal/http/handlers"
	httpMW "github.com/lumenlearn/mastery-engine/internal/http/middleware"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	InteractionHandler *httpH.InteractionHandler
	AssessmentHandler  *httpH.AssessmentHandler
	ProgressHandler    *httpH.ProgressHandler
	ScoringHandler     *httpH.ScoringHandler
	ProfileHandler     *httpH.ProfileHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("mastery-engine"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Evidence ingestion
		if cfg.InteractionHandler != nil {
			api.POST("/interactions", cfg.InteractionHandler.Submit)
		}
		if cfg.AssessmentHandler != nil {
			api.POST("/assessments", cfg.AssessmentHandler.Submit)
		}

		// Path projection
		if cfg.ProgressHandler != nil {
			api.GET("/paths/:threadID/progress", cfg.ProgressHandler.Sync)
		}

		// Personalized ranking
		if cfg.ScoringHandler != nil {
			api.POST("/score", cfg.ScoringHandler.Score)
		}

		// Preference profile
		if cfg.ProfileHandler != nil {
			api.POST("/profile/rebuild", cfg.ProfileHandler.Rebuild)
			api.GET("/profile", cfg.ProfileHandler.Get)
		}
	}

	return r
}
