package api

import (
	"net/http"

	"github.com/example/feastly/pkg/models"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	RestaurantID  string             `json:"restaurant_id" binding:"required"`
	Items         []models.OrderItem `json:"items" binding:"required"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &models.Order{
		RestaurantID:  req.RestaurantID,
		Items:         req.Items,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	}
	if err := s.store.CreateOrder(c.Request.Context(), order); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listRestaurantOrders(c *gin.Context) {
	list, err := s.store.OrdersByRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "total": len(list)})
}

func (s *Server) listUserOrders(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}
	list, err := s.store.OrdersByUser(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "total": len(list)})
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.store.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.store.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) deleteOrder(c *gin.Context) {
	if err := s.store.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
