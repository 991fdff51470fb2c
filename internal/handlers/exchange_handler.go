package handlers

import (
	"errors"
	"net/http"

	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/middleware"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"
	"dealroom_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ExchangeHandler struct {
	exchanges *services.ExchangeService
}

func NewExchangeHandler(exchanges *services.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchanges: exchanges}
}

func (h *ExchangeHandler) RegisterRoutes(api *gin.RouterGroup) {
	group := api.Group("/exchanges")
	group.GET("/list", h.List)
	group.GET("/:id", h.Get)

	authed := group.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("", h.My)
		authed.POST("/create", h.Create)
		authed.POST("/edit/:id", h.Edit)
		authed.POST("/close", h.Close)
	}
}

func (h *ExchangeHandler) My(c *gin.Context) {
	var q struct {
		Offset int    `form:"offset"`
		Limit  int    `form:"limit,default=20"`
		SortBy string `form:"sortBy,default=created_at"`
		Order  bool   `form:"order"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.exchanges.MyExchanges(c.GetString("userID"), q.SortBy, q.Order, q.Offset, q.Limit)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("owner exchange listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list exchanges"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ExchangeHandler) List(c *gin.Context) {
	var criteria repositories.ExchangeListCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if criteria.Limit == 0 {
		criteria.Limit = 20
	}

	list, err := h.exchanges.List(c.Request.Context(), criteria)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("public exchange listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list exchanges"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ExchangeHandler) Get(c *gin.Context) {
	exchange, reviews, err := h.exchanges.GetWithReviews(c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrExchangeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load exchange"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exchange": exchange, "reviews": reviews})
}

func (h *ExchangeHandler) Create(c *gin.Context) {
	var input services.CreateExchangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Bad request", "errors": err.Error()})
		return
	}

	roleVal, _ := c.Get("role")
	role, _ := roleVal.(models.UserRole)
	exchange, err := h.exchanges.Create(c.GetString("userID"), role, input)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exchange": exchange})
}

func (h *ExchangeHandler) Edit(c *gin.Context) {
	var input services.EditExchangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Bad request", "errors": err.Error()})
		return
	}

	exchange, err := h.exchanges.Edit(c.GetString("userID"), c.Param("id"), input)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrExchangeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can't edit this exchange"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to edit exchange"})
		}
		return
	}
	c.JSON(http.StatusOK, exchange)
}

func (h *ExchangeHandler) Close(c *gin.Context) {
	var body struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exchange, err := h.exchanges.Close(c.GetString("userID"), body.ID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrExchangeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permissions"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close exchange"})
		}
		return
	}
	c.JSON(http.StatusOK, exchange)
}
