package handlers

import (
	"net/http"

	"menu_platform/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RestaurantHandler struct {
	restaurantService services.RestaurantService
	log               *zap.Logger
}

func NewRestaurantHandler(restaurantService services.RestaurantService, log *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService, log: log}
}

func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	restaurant, err := h.restaurantService.GetRestaurantByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}
