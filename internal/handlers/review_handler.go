package handlers

import (
	"errors"
	"net/http"

	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/middleware"
	"dealroom_backend/internal/repositories"
	"dealroom_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) RegisterRoutes(api *gin.RouterGroup) {
	group := api.Group("/reviews")
	group.GET("/user/:id", h.ForUser)

	authed := group.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/can-create", h.CanCreate)
		authed.POST("", h.Create)
	}
}

func (h *ReviewHandler) ForUser(c *gin.Context) {
	reviews, err := h.reviews.ForUser(c.Param("id"))
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("review listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) CanCreate(c *gin.Context) {
	dealID := c.Query("deal_id")
	if dealID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deal_id is required"})
		return
	}

	ctx := logger.WithDealID(c.Request.Context(), dealID)
	can, err := h.reviews.CanReview(dealID, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, repositories.ErrDealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
			return
		}
		logger.FromContext(ctx).Error("review eligibility check failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check review"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_review": can})
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var body struct {
		DealID string `json:"deal_id" binding:"required"`
		Rating int    `json:"rating" binding:"required,min=1,max=5"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.Create(body.DealID, c.GetString("userID"), body.Rating, body.Text)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDealNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, services.ErrAlreadyReviewed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "already reviewed"})
		case errors.Is(err, services.ErrDealNotOpen):
			c.JSON(http.StatusBadRequest, gin.H{"error": "deal is not completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
		}
		return
	}
	c.JSON(http.StatusCreated, review)
}
