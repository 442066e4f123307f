package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// useCORS 只放行员工前端的来源（WEB_ORIGIN + RP_ORIGINS）
func useCORS(r *gin.Engine, cfg Config) {
	var origins []string
	seen := map[string]bool{}
	for _, o := range append([]string{cfg.WebOrigin}, cfg.RPOrigins...) {
		if o != "" && !seen[o] {
			seen[o] = true
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
