package api

import (
	"net/http"
	"time"

	"github.com/example/feastly/pkg/groups"
	"github.com/example/feastly/pkg/models"
	"github.com/example/feastly/pkg/repository"
	"github.com/gin-gonic/gin"
)

type groupParticipantRequest struct {
	Name  string             `json:"name" binding:"required"`
	Email string             `json:"email"`
	Phone string             `json:"phone"`
	Items []models.OrderItem `json:"items"`
	Share float64            `json:"share"`
}

type createGroupOrderRequest struct {
	OrderID         string                    `json:"order_id"`
	RestaurantID    string                    `json:"restaurant_id" binding:"required"`
	OrganizerName   string                    `json:"organizer_name" binding:"required"`
	OrganizerEmail  string                    `json:"organizer_email" binding:"required"`
	OrganizerPhone  string                    `json:"organizer_phone"`
	Total           models.Price              `json:"total"`
	SplitStrategy   string                    `json:"split_strategy" binding:"required"`
	Participants    []groupParticipantRequest `json:"participants" binding:"required"`
	DeliveryAddress string                    `json:"delivery_address"`
	PaymentDeadline time.Time                 `json:"payment_deadline"`
	SharedItems     []models.OrderItem        `json:"shared_items"`
}

func (s *Server) createGroupOrder(c *gin.Context) {
	var req createGroupOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := &models.GroupOrder{
		OrderID:         req.OrderID,
		RestaurantID:    req.RestaurantID,
		OrganizerName:   req.OrganizerName,
		OrganizerEmail:  req.OrganizerEmail,
		OrganizerPhone:  req.OrganizerPhone,
		Total:           float64(req.Total),
		SplitStrategy:   req.SplitStrategy,
		DeliveryAddress: req.DeliveryAddress,
		PaymentDeadline: req.PaymentDeadline,
		SharedItems:     req.SharedItems,
	}
	for _, p := range req.Participants {
		group.Participants = append(group.Participants, models.Participant{
			ID:            repository.NewID("prt"),
			Name:          p.Name,
			Email:         p.Email,
			Phone:         p.Phone,
			Items:         p.Items,
			Share:         p.Share,
			PaymentStatus: models.PaymentPending,
		})
	}

	if err := groups.ComputeShares(group); err != nil {
		s.fail(c, err)
		return
	}
	group.Status = groups.DeriveStatus(group.Participants)

	if err := s.store.CreateGroupOrder(c.Request.Context(), group); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"group_order":   group,
		"payment_links": paymentLinks(group),
	})
}

func paymentLinks(g *models.GroupOrder) map[string]string {
	links := make(map[string]string, len(g.Participants))
	for _, p := range g.Participants {
		links[p.ID] = groups.PaymentLink(g.Code, p.ID, p.Share)
	}
	return links
}

func (s *Server) getGroupOrder(c *gin.Context) {
	group, err := s.store.GroupOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"group_order":   group,
		"payment_links": paymentLinks(group),
	})
}

func (s *Server) groupOrderSummary(c *gin.Context) {
	group, err := s.store.GroupOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, groups.PaymentSummary(group))
}

type groupPaymentRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
	PaymentRef    string `json:"payment_ref"`
}

// groupOrderPayment is the payment callback: it mutates one
// participant, re-derives the aggregate status, and persists.
func (s *Server) groupOrderPayment(c *gin.Context) {
	var req groupPaymentRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.PaymentPaid && req.Status != models.PaymentFailed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be paid or failed"})
		return
	}

	group, err := s.store.GroupOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c, err)
		return
	}

	found := false
	for i := range group.Participants {
		if group.Participants[i].ID != req.ParticipantID {
			continue
		}
		group.Participants[i].PaymentStatus = req.Status
		group.Participants[i].PaymentRef = req.PaymentRef
		if req.Status == models.PaymentPaid {
			now := time.Now()
			group.Participants[i].PaidAt = &now
		}
		found = true
		break
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
		return
	}

	// Cancelled groups keep their forced status.
	if group.Status != models.GroupCancelled {
		group.Status = groups.DeriveStatus(group.Participants)
	}

	if err := s.store.UpdateGroupOrder(c.Request.Context(), group); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"group_order": group,
		"summary":     groups.PaymentSummary(group),
	})
}

type cancelGroupRequest struct {
	Email string `json:"email" binding:"required"`
}

func (s *Server) cancelGroupOrder(c *gin.Context) {
	var req cancelGroupRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := s.store.GroupOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := groups.Cancel(group, req.Email); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.UpdateGroupOrder(c.Request.Context(), group); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}
