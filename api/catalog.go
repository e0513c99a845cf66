package api

import (
	"net/http"

	"github.com/example/feastly/pkg/models"
	"github.com/gin-gonic/gin"
)

type createRestaurantRequest struct {
	ID      string  `json:"id"`
	Name    string  `json:"name" binding:"required"`
	Cuisine string  `json:"cuisine"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating"`
	IsOpen  bool    `json:"is_open"`
}

func (s *Server) createRestaurant(c *gin.Context) {
	var req createRestaurantRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := &models.Restaurant{
		ID:      req.ID,
		Name:    req.Name,
		Cuisine: req.Cuisine,
		Address: req.Address,
		Rating:  req.Rating,
		IsOpen:  req.IsOpen,
	}
	if err := s.store.CreateRestaurant(c.Request.Context(), r); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) listRestaurants(c *gin.Context) {
	list, err := s.store.Restaurants(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": list, "total": len(list)})
}

func (s *Server) getRestaurant(c *gin.Context) {
	r, err := s.store.Restaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type createMenuItemRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Price       models.Price `json:"price"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	Available   *bool        `json:"available"`
}

func (s *Server) createMenuItem(c *gin.Context) {
	var req createMenuItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	item := &models.MenuItem{
		RestaurantID: c.Param("id"),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		Tags:         req.Tags,
		Available:    available,
	}
	if err := s.store.CreateMenuItem(c.Request.Context(), item); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) listMenu(c *gin.Context) {
	items, err := s.store.MenuByRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": items, "total": len(items)})
}

type createRatingRequest struct {
	UserEmail string `json:"user_email"`
	Value     int    `json:"value" binding:"required"`
	Comment   string `json:"comment"`
}

func (s *Server) createRating(c *gin.Context) {
	var req createRatingRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Value < 1 || req.Value > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating value must be between 1 and 5"})
		return
	}

	r := &models.Rating{
		RestaurantID: c.Param("id"),
		UserEmail:    req.UserEmail,
		Value:        req.Value,
		Comment:      req.Comment,
	}
	if err := s.store.CreateRating(c.Request.Context(), r); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) listRatings(c *gin.Context) {
	list, err := s.store.RatingsByRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": list, "total": len(list)})
}

type createFeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

func (s *Server) createFeedback(c *gin.Context) {
	var req createFeedbackRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb := &models.Feedback{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.store.CreateFeedback(c.Request.Context(), fb); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

func (s *Server) listFeedback(c *gin.Context) {
	list, err := s.store.ListFeedback(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": list, "total": len(list)})
}
