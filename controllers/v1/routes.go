package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/phoaar/cacv-bulletin-automation/config"
)

// NewRouter builds the webhook server: the /api/v1 group plus static
// serving of the output directory under /bulletins.
func NewRouter(ctl *BulletinController, corsOrigins []string) *gin.Engine {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{config.DefaultCORSOrigin}
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	v1Group := r.Group("/api/v1")
	{
		v1Group.POST("/generate", ctl.Generate)
		v1Group.GET("/runs", ctl.GetRuns)
		v1Group.GET("/bulletins", ctl.GetBulletins)
	}
	r.Static("/bulletins", ctl.outputDir)

	return r
}
