// Package api exposes the HTTP JSON surface: health, auth, catalog,
// orders, group orders, reporting, and recommendations. Handlers stay
// thin and delegate to the persistence backend and the rule packages.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/example/feastly/pkg/config"
	"github.com/example/feastly/pkg/groups"
	"github.com/example/feastly/pkg/orders"
	"github.com/example/feastly/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	config *config.Config
	store  repository.Store
	logger *zap.Logger
	router *gin.Engine
}

func NewServer(cfg *config.Config, store repository.Store, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config: cfg,
		store:  store,
		logger: logger,
		router: router,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
		}

		restaurants := v1.Group("/restaurants")
		{
			restaurants.POST("", s.createRestaurant)
			restaurants.GET("", s.listRestaurants)
			restaurants.GET("/:id", s.getRestaurant)
			restaurants.POST("/:id/menu", s.createMenuItem)
			restaurants.GET("/:id/menu", s.listMenu)
			restaurants.POST("/:id/ratings", s.createRating)
			restaurants.GET("/:id/ratings", s.listRatings)
			restaurants.GET("/:id/orders", s.listRestaurantOrders)
			restaurants.GET("/:id/stats", s.restaurantStats)
			restaurants.GET("/:id/recommendations", s.recommendations)
		}

		ordersGroup := v1.Group("/orders")
		{
			ordersGroup.POST("", s.createOrder)
			ordersGroup.GET("", s.listUserOrders)
			ordersGroup.GET("/:id", s.getOrder)
			ordersGroup.PUT("/:id/status", s.updateOrderStatus)
			ordersGroup.DELETE("/:id", s.deleteOrder)
		}

		groupOrders := v1.Group("/group-orders")
		{
			groupOrders.POST("", s.createGroupOrder)
			groupOrders.GET("/:code", s.getGroupOrder)
			groupOrders.GET("/:code/summary", s.groupOrderSummary)
			groupOrders.POST("/:code/pay", s.groupOrderPayment)
			groupOrders.POST("/:code/cancel", s.cancelGroupOrder)
		}

		v1.POST("/feedback", s.createFeedback)
		v1.GET("/feedback", s.listFeedback)
		v1.GET("/analytics", s.analytics)
	}
}

func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.logger.Info("Server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// fail maps domain errors to status codes. Backend failures are logged
// in full and surfaced as a generic 500.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrDeleteWindowClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, groups.ErrNotOrganizer):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrNoItems),
		errors.Is(err, groups.ErrNoParticipants),
		errors.Is(err, groups.ErrUnknownStrategy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Backend operation failed",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
