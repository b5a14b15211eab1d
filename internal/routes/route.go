package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rsvp/internal/container"
	"github.com/joshua-takyi/rsvp/internal/handlers"
	"github.com/joshua-takyi/rsvp/internal/metrics"
	"github.com/joshua-takyi/rsvp/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", handlers.Ready(c.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health())

		guests := v1.Group("/guests")
		guests.GET("/rsvp/:token", handlers.GetRSVPInfo(c.RSVPService))
		guests.POST("/rsvp/:token", handlers.SubmitRSVP(c.RSVPService))
		guests.POST("/request-invitation", c.RateLimiter.Handler(), handlers.RequestInvitation(c.GuestService))

		v1.POST("/admin/login", c.RateLimiter.Handler(), handlers.AdminLogin(c.AuthService))
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(c.Verifier))
	{
		admin.GET("/me", handlers.AdminProfile())

		admin.GET("/guests", handlers.ListGuests(c.GuestService))
		admin.POST("/guests", handlers.CreateGuest(c.GuestService))
		admin.GET("/guests/:id", handlers.GetGuest(c.GuestService))
		admin.PUT("/guests/:id", handlers.UpdateGuest(c.GuestService))
		admin.DELETE("/guests/:id", handlers.DeleteGuest(c.GuestService))
		admin.POST("/guests/:id/invite", handlers.SendInvitation(c.GuestService))

		admin.POST("/families", handlers.CreateFamily(c.GuestService))
		admin.POST("/families/:id/children", handlers.CreateChildGuest(c.GuestService))

		admin.GET("/email-logs", handlers.ListEmailLogs(c.EmailLogService))
	}

	return r
}
