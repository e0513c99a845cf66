package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/example/feastly/pkg/models"
	"github.com/example/feastly/pkg/recommend"
	"github.com/gin-gonic/gin"
)

func (s *Server) restaurantStats(c *gin.Context) {
	report, err := s.store.RestaurantReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// analytics is the cross-restaurant rollup: the same report shape over
// every stored order.
func (s *Server) analytics(c *gin.Context) {
	report, err := s.store.RestaurantReport(c.Request.Context(), "")
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) recommendations(c *gin.Context) {
	menu, err := s.store.MenuByRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	var history []models.Order
	if email := c.Query("email"); email != "" {
		history, err = s.store.OrdersByUser(c.Request.Context(), email)
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	scored := recommend.Recommend(menu, c.Query("mood"), time.Now(), history, limit)
	c.JSON(http.StatusOK, gin.H{"recommendations": scored, "total": len(scored)})
}
