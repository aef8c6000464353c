package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/dojoportal/internal/api/handlers"
	"github.com/yoockh/dojoportal/internal/api/middleware"
	"github.com/yoockh/dojoportal/internal/session"
)

type Deps struct {
	JWT      middleware.JWTConfig
	Profiles session.ProfileEnsurer
	Origins  []string
	Log      logrus.FieldLogger

	Auth    *handlers.AuthHandler
	Setup   *handlers.SetupHandler
	Profile *handlers.ProfileHandler
	Media   *handlers.MediaHandler
	Funds   *handlers.FundsHandler
	Players *handlers.PlayersHandler
	WS      *handlers.WSHandler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.Origins)))

	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	resolve := middleware.Session(d.Profiles, d.Log)

	r.POST("/auth/signin", d.Auth.SignIn)
	r.POST("/auth/signup", d.Auth.SignUp)
	r.POST("/setup/seed", d.Setup.Seed)

	// Public routes (anonymous or signed in)
	public := r.Group("/")
	public.Use(middleware.OptionalJWT(d.JWT), resolve)

	public.GET("/carousel", d.Media.List)
	public.GET("/ws/carousel", d.WS.Carousel)

	// Protected routes (JWT)
	member := r.Group("/")
	member.Use(middleware.JWTAuth(d.JWT), resolve, middleware.RequireAuth())

	member.POST("/auth/signout", d.Auth.SignOut)
	member.GET("/profile/me", d.Profile.Me)

	// Admin routes
	admin := r.Group("/")
	admin.Use(middleware.JWTAuth(d.JWT), resolve, middleware.RequireAdmin())

	admin.POST("/carousel/media", d.Media.Upload)
	admin.POST("/carousel/embeds", d.Media.AddEmbed)
	admin.DELETE("/carousel/media/:id", d.Media.Delete)

	admin.GET("/admin/funds", d.Funds.List)
	admin.GET("/admin/funds/total", d.Funds.Total)
	admin.POST("/admin/funds", d.Funds.Create)
	admin.PUT("/admin/funds/:id", d.Funds.Update)
	admin.DELETE("/admin/funds/:id", d.Funds.Delete)

	admin.GET("/admin/players", d.Players.List)
	admin.POST("/admin/players", d.Players.Create)
	admin.PUT("/admin/players/:id", d.Players.Update)
	admin.DELETE("/admin/players/:id", d.Players.Delete)

	// WebSocket
	admin.GET("/ws/admin/funds", d.WS.Funds)
	admin.GET("/ws/admin/players", d.WS.Players)
}
