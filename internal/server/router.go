package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/formaplus/elearning-backend/internal/handlers"
	"github.com/formaplus/elearning-backend/internal/middleware"
)

type RouterConfig struct {
	CORSOrigins []string
	Tracing     bool

	AuthMiddleware   *middleware.AuthMiddleware
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	FormationHandler *handlers.FormationHandler
	SelectionHandler *handlers.SelectionHandler
	ChatHandler      *handlers.ChatHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.Tracing {
		router.Use(otelgin.Middleware("elearning-backend"))
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/me", cfg.AuthHandler.GetMe)
	// Catalog
	protected.GET("/formations", cfg.FormationHandler.List)
	protected.GET("/formations/domains", cfg.FormationHandler.Domains)
	protected.GET("/formations/domain/:domain", cfg.FormationHandler.ListByDomain)
	protected.GET("/formations/:id", cfg.FormationHandler.Detail)
	protected.GET("/formations/:id/download", cfg.FormationHandler.Download)
	protected.POST("/my-formations", cfg.FormationHandler.CreatePersonal)
	// Selections
	protected.POST("/formations/:id/select", cfg.SelectionHandler.Select)
	protected.GET("/selections", cfg.SelectionHandler.ListMine)
	// Chat
	protected.POST("/chat", cfg.ChatHandler.Message)
	protected.POST("/chat/search", cfg.ChatHandler.Search)
	protected.POST("/chat/reset", cfg.ChatHandler.Reset)

	// ===============
	// || Admin     ||
	// ===============
	admin := protected.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	admin.POST("/formations", cfg.FormationHandler.Create)
	admin.PUT("/formations/:id", cfg.FormationHandler.Update)
	admin.DELETE("/formations/:id", cfg.FormationHandler.Delete)
	admin.GET("/users", cfg.UserHandler.List)
	admin.POST("/users", cfg.UserHandler.Create)
	admin.PUT("/users/:id", cfg.UserHandler.Update)
	admin.DELETE("/users/:id", cfg.UserHandler.Delete)

	return router
}
