package handlers

import (
	"net/http"
	"strconv"
	"time"

	"menu_platform/internal/auth"
	"menu_platform/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService services.OrderService
	log          *zap.Logger
}

func NewOrderHandler(orderService services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, log: log}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input services.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, please provide valid JSON"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &input, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListOrders serves lookups by order number as well as paginated listings
// filtered by customer, restaurant, status and created_at range.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	if orderNumber := c.Query("order_number"); orderNumber != "" {
		order, err := h.orderService.GetOrderByNumber(c.Request.Context(), orderNumber)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
		return
	}

	query := services.OrderQuery{
		CustomerID:   c.Query("customer_id"),
		RestaurantID: c.Query("restaurant_id"),
		Status:       c.Query("status"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 10),
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected RFC3339"})
			return
		}
		query.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected RFC3339"})
			return
		}
		query.EndDate = &t
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var patch services.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, please provide valid JSON"})
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), &patch, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully", "order": order})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, please provide valid JSON"})
		return
	}
	if req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated to " + req.Status + " successfully", "order": order})
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req struct {
		CancellationReason string `json:"cancellation_reason"`
	}
	// A missing or invalid body just means no cancellation reason.
	_ = c.ShouldBindJSON(&req)

	order, alreadyCancelled, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("id"), req.CancellationReason, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if alreadyCancelled {
		c.JSON(http.StatusOK, gin.H{"message": "Order is already cancelled", "order": order})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
