package handlers

import (
	"net/http"

	"menu_platform/internal/auth"
	"menu_platform/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviewService services.ReviewService
	log           *zap.Logger
}

func NewReviewHandler(reviewService services.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, log: log}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, please provide valid JSON"})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), &input, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review created successfully", "review": review})
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.GetReviewByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	if reviewNumber := c.Query("review_number"); reviewNumber != "" {
		review, err := h.reviewService.GetReviewByNumber(c.Request.Context(), reviewNumber)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"review": review})
		return
	}

	query := services.ReviewQuery{
		CustomerID:   c.Query("customer_id"),
		RestaurantID: c.Query("restaurant_id"),
		MinRating:    queryInt(c, "min_rating", 0),
		MaxRating:    queryInt(c, "max_rating", 0),
		SortBy:       c.DefaultQuery("sort_by", "date"),
		Page:         queryInt(c, "page", 1),
		Limit:        queryInt(c, "limit", 10),
	}

	page, err := h.reviewService.ListReviews(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	var patch services.ReviewPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, please provide valid JSON"})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("id"), &patch, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully", "review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id"), auth.FromContext(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

func (h *ReviewHandler) RespondToReview(c *gin.Context) {
	var req struct {
		ResponseText string `json:"response_text"`
		AuthorTitle  string `json:"author_title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, please provide valid JSON"})
		return
	}

	review, err := h.reviewService.RespondToReview(c.Request.Context(), c.Param("id"), req.ResponseText, req.AuthorTitle, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Response added successfully", "review": review})
}

func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	req := struct {
		Helpful *bool `json:"helpful"`
	}{}
	_ = c.ShouldBindJSON(&req)
	helpful := req.Helpful == nil || *req.Helpful

	review, err := h.reviewService.MarkHelpful(c.Request.Context(), c.Param("id"), helpful)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := "Review marked as helpful"
	if !helpful {
		message = "Review marked as unhelpful"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "review": review})
}

func (h *ReviewHandler) FlagReview(c *gin.Context) {
	var req struct {
		FlagReason string `json:"flag_reason"`
	}
	_ = c.ShouldBindJSON(&req)

	review, err := h.reviewService.FlagReview(c.Request.Context(), c.Param("id"), req.FlagReason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review flagged successfully", "review": review})
}

func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	var req struct {
		Status          string `json:"status"`
		ModerationNotes string `json:"moderation_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body, please provide valid JSON"})
		return
	}
	if req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	review, err := h.reviewService.ModerateReview(c.Request.Context(), c.Param("id"), req.Status, req.ModerationNotes, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review moderated successfully, status set to " + req.Status, "review": review})
}

func (h *ReviewHandler) FeatureReview(c *gin.Context) {
	req := struct {
		Featured *bool `json:"featured"`
	}{}
	_ = c.ShouldBindJSON(&req)
	featured := req.Featured == nil || *req.Featured

	review, err := h.reviewService.FeatureReview(c.Request.Context(), c.Param("id"), featured, auth.FromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := "Review featured successfully"
	if !featured {
		message = "Review unfeatured successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "review": review})
}
