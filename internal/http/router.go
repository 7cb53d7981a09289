package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teardown-leads/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
// Con jwtSvc nil el API queda abierto. CORS solo se habilita con origenes configurados.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	allowedOrigins []string,
	scoringH *ScoringHandler,
	listingH *ListingHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())
	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	if jwtSvc != nil {
		api.Use(JWTAuthMiddleware(jwtSvc))
	}

	read := api.Group("", RequireScope(service.ScopeRead))
	read.POST("/roi", scoringH.EstimateROI)
	read.POST("/score", scoringH.ScoreListing)
	read.GET("/opportunities", listingH.RecentOpportunities)
	read.GET("/stats", listingH.Stats)
	read.GET("/listings/:id/history", listingH.ListingHistory)

	write := api.Group("", RequireScope(service.ScopeWrite))
	write.POST("/listings/score", listingH.ScoreListings)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
