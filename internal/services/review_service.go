package services

import (
	"context"
	"fmt"
	"time"

	"menu_platform/internal/auth"
	"menu_platform/internal/models"
	"menu_platform/internal/redis"
	"menu_platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// RatingCache receives the restaurant rating snapshot on every recompute.
type RatingCache interface {
	SetRatingSnapshot(restaurantID string, snapshot *redis.RatingSnapshot, ttl time.Duration) error
}

type ReviewInput struct {
	RestaurantID string             `json:"restaurant_id"`
	CustomerID   string             `json:"customer_id"`
	StaffID      string             `json:"staff_id"`
	MenuItemID   string             `json:"menu_item_id"`
	OrderID      string             `json:"order_id"`
	Rating       int                `json:"rating"`
	Title        string             `json:"title"`
	Text         string             `json:"text"`
	Tags         []string           `json:"tags"`
	Categories   []string           `json:"categories"`
	SubRatings   *models.SubRatings `json:"sub_ratings"`
	Media        *models.ReviewMedia `json:"media"`
}

// ReviewPatch is the allow-list of caller-patchable fields. Engagement
// counters, customer_id and review_number are server-owned and simply have
// no slot here.
type ReviewPatch struct {
	Rating     *int               `json:"rating"`
	Title      *string            `json:"title"`
	Text       *string            `json:"text"`
	Tags       *[]string          `json:"tags"`
	Categories *[]string          `json:"categories"`
	SubRatings *models.SubRatings `json:"sub_ratings"`
}

type ReviewQuery struct {
	CustomerID   string
	RestaurantID string
	MinRating    int
	MaxRating    int
	SortBy       string
	Page         int
	Limit        int
}

type ReviewPage struct {
	Reviews            []models.Review  `json:"reviews"`
	Count              int              `json:"count"`
	TotalCount         int64            `json:"total_count"`
	Page               int              `json:"page"`
	TotalPages         int64            `json:"total_pages"`
	RatingDistribution map[string]int64 `json:"rating_distribution,omitempty"`
}

type ReviewService interface {
	CreateReview(ctx context.Context, input *ReviewInput, claims *auth.Claims) (*models.Review, error)
	GetReviewByID(ctx context.Context, id string) (*models.Review, error)
	GetReviewByNumber(ctx context.Context, reviewNumber string) (*models.Review, error)
	ListReviews(ctx context.Context, query ReviewQuery) (*ReviewPage, error)
	UpdateReview(ctx context.Context, id string, patch *ReviewPatch, claims *auth.Claims) (*models.Review, error)
	DeleteReview(ctx context.Context, id string, claims *auth.Claims) error
	RespondToReview(ctx context.Context, id string, text, authorTitle string, claims *auth.Claims) (*models.Review, error)
	MarkHelpful(ctx context.Context, id string, helpful bool) (*models.Review, error)
	FlagReview(ctx context.Context, id string, reason string) (*models.Review, error)
	ModerateReview(ctx context.Context, id string, status, notes string, claims *auth.Claims) (*models.Review, error)
	FeatureReview(ctx context.Context, id string, featured bool, claims *auth.Claims) (*models.Review, error)
	RecomputeRestaurantRating(ctx context.Context, restaurantID string) (float64, int64, error)
}

type reviewService struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	cache          RatingCache
	flagThreshold  int
	cacheTTL       time.Duration
	log            *zap.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	restaurantRepo repository.RestaurantRepository,
	cache RatingCache,
	flagThreshold int,
	cacheTTL time.Duration,
	log *zap.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
		cache:          cache,
		flagThreshold:  flagThreshold,
		cacheTTL:       cacheTTL,
		log:            log,
	}
}

func (s *reviewService) CreateReview(ctx context.Context, input *ReviewInput, claims *auth.Claims) (*models.Review, error) {
	var missing []string
	if input.RestaurantID == "" {
		missing = append(missing, "restaurant_id")
	}
	if input.Rating == 0 {
		missing = append(missing, "rating")
	}
	if input.Text == "" {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		return nil, newValidationError("missing required fields: %s", joinFields(missing))
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, newValidationError("rating must be between 1 and 5")
	}

	// The referenced restaurant must exist before the review is written.
	restaurantOID, err := parseID(input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if _, err := s.restaurantRepo.GetByID(ctx, restaurantOID); err != nil {
		return nil, fromStore(err)
	}

	now := time.Now().UTC()

	customerID := input.CustomerID
	if customerID == "" {
		customerID = claims.SubjectID
	}

	review := &models.Review{
		ReviewNumber: "REV-" + now.Format("20060102150405"),
		RestaurantID: input.RestaurantID,
		CustomerID:   customerID,
		StaffID:      input.StaffID,
		MenuItemID:   input.MenuItemID,
		OrderID:      input.OrderID,
		Rating:       input.Rating,
		Title:        input.Title,
		Text:         input.Text,
		Date:         now,
		Media:        models.ReviewMedia{Images: []string{}},
		Status:       string(models.ReviewPublished),
		IsActive:     true,
		Tags:         input.Tags,
		Categories:   input.Categories,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.SubRatings != nil {
		review.SubRatings = *input.SubRatings
	}
	if input.Media != nil {
		review.Media = *input.Media
	}

	id, err := s.reviewRepo.Insert(ctx, review)
	if err != nil {
		return nil, err
	}
	review.ID = id

	// Rating recompute failing after a successful insert is logged and not
	// rolled back; the aggregate catches up on the next recompute.
	if _, _, err := s.RecomputeRestaurantRating(ctx, input.RestaurantID); err != nil {
		s.log.Warn("restaurant rating recompute failed after review create",
			zap.String("restaurant_id", input.RestaurantID),
			zap.Error(err))
	}

	s.log.Info("review created",
		zap.String("review_id", id.Hex()),
		zap.String("restaurant_id", input.RestaurantID),
		zap.Int("rating", input.Rating))

	return review, nil
}

func (s *reviewService) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetActiveByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.reviewRepo.IncrementCounter(ctx, oid, "view_count"); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) GetReviewByNumber(ctx context.Context, reviewNumber string) (*models.Review, error) {
	review, err := s.reviewRepo.GetByReviewNumber(ctx, reviewNumber)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := s.reviewRepo.IncrementCounter(ctx, review.ID, "view_count"); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListReviews(ctx context.Context, query ReviewQuery) (*ReviewPage, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	reviews, totalCount, err := s.reviewRepo.List(ctx, repository.ReviewFilter{
		CustomerID:   query.CustomerID,
		RestaurantID: query.RestaurantID,
		MinRating:    query.MinRating,
		MaxRating:    query.MaxRating,
		SortBy:       query.SortBy,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	result := &ReviewPage{
		Reviews:    reviews,
		Count:      len(reviews),
		TotalCount: totalCount,
		Page:       page,
		TotalPages: totalPages(totalCount, limit),
	}

	if query.RestaurantID != "" {
		distribution := make(map[string]int64, 5)
		for rating := 1; rating <= 5; rating++ {
			count, err := s.reviewRepo.CountByRating(ctx, query.RestaurantID, rating)
			if err != nil {
				return nil, err
			}
			distribution[fmt.Sprintf("%d", rating)] = count
		}
		result.RatingDistribution = distribution
	}

	return result, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, id string, patch *ReviewPatch, claims *auth.Claims) (*models.Review, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	isOwner := claims.SubjectID != "" && claims.SubjectID == existing.CustomerID
	if !claims.IsAdmin() && !isOwner {
		return nil, ErrForbidden
	}

	if patch.Rating != nil && (*patch.Rating < 1 || *patch.Rating > 5) {
		return nil, newValidationError("rating must be between 1 and 5")
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.Categories != nil {
		set["categories"] = *patch.Categories
	}
	if patch.SubRatings != nil {
		set["sub_ratings"] = patch.SubRatings
	}

	if _, err := s.reviewRepo.Update(ctx, oid, set, nil); err != nil {
		return nil, err
	}

	if patch.Rating != nil && *patch.Rating != existing.Rating {
		if _, _, err := s.RecomputeRestaurantRating(ctx, existing.RestaurantID); err != nil {
			s.log.Warn("restaurant rating recompute failed after review update",
				zap.String("restaurant_id", existing.RestaurantID),
				zap.Error(err))
		}
	}

	updated, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id string, claims *auth.Claims) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	existing, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return fromStore(err)
	}

	isOwner := claims.SubjectID != "" && claims.SubjectID == existing.CustomerID
	if !claims.IsAdmin() && !isOwner && !s.isRestaurantOwner(ctx, existing.RestaurantID, claims) {
		return ErrForbidden
	}

	now := time.Now().UTC()
	set := bson.M{
		"is_active":  false,
		"status":     string(models.ReviewDeleted),
		"updated_at": now,
		"deleted_by": claims.Username(),
		"deleted_at": now,
	}
	if _, err := s.reviewRepo.Update(ctx, oid, set, nil); err != nil {
		return err
	}

	if _, _, err := s.RecomputeRestaurantRating(ctx, existing.RestaurantID); err != nil {
		s.log.Warn("restaurant rating recompute failed after review delete",
			zap.String("restaurant_id", existing.RestaurantID),
			zap.Error(err))
	}

	return nil
}

func (s *reviewService) RespondToReview(ctx context.Context, id string, text, authorTitle string, claims *auth.Claims) (*models.Review, error) {
	if text == "" {
		return nil, newValidationError("response text is required")
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	if !claims.IsAdmin() && !s.isRestaurantOwner(ctx, existing.RestaurantID, claims) {
		return nil, ErrForbidden
	}

	if authorTitle == "" {
		authorTitle = "Restaurant Representative"
	}

	now := time.Now().UTC()
	response := models.ReviewResponse{
		Text:        text,
		AuthorID:    claims.SubjectID,
		AuthorTitle: authorTitle,
		Date:        now.Format(time.RFC3339),
		IsEdited:    existing.Response.Text != "",
	}

	set := bson.M{"response": response, "updated_at": now}
	if _, err := s.reviewRepo.Update(ctx, oid, set, nil); err != nil {
		return nil, err
	}

	updated, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

func (s *reviewService) MarkHelpful(ctx context.Context, id string, helpful bool) (*models.Review, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.reviewRepo.GetByID(ctx, oid); err != nil {
		return nil, fromStore(err)
	}

	field := "helpful_count"
	if !helpful {
		field = "unhelpful_count"
	}
	if err := s.reviewRepo.IncrementCounter(ctx, oid, field); err != nil {
		return nil, err
	}

	updated, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

func (s *reviewService) FlagReview(ctx context.Context, id string, reason string) (*models.Review, error) {
	if reason == "" {
		reason = "Inappropriate content"
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	// The reason list is deduplicated, but the flag count always increments.
	reasons := existing.FlaggedReason
	found := false
	for _, r := range reasons {
		if r == reason {
			found = true
			break
		}
	}
	if !found {
		reasons = append(reasons, reason)
	}

	set := bson.M{"flagged_reason": reasons, "updated_at": time.Now().UTC()}
	if _, err := s.reviewRepo.Update(ctx, oid, set, bson.M{"flag_count": 1}); err != nil {
		return nil, err
	}

	escalated, err := s.reviewRepo.EscalateFlagged(ctx, oid, s.flagThreshold)
	if err != nil {
		return nil, err
	}
	if escalated {
		s.log.Info("review escalated to under_review",
			zap.String("review_id", id),
			zap.Int("flag_threshold", s.flagThreshold))
	}

	updated, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

func (s *reviewService) ModerateReview(ctx context.Context, id string, status, notes string, claims *auth.Claims) (*models.Review, error) {
	if !claims.IsAdmin() {
		return nil, ErrForbidden
	}
	if !models.IsValidModerationStatus(status) {
		return nil, newValidationError("invalid status, must be one of: %s", joinFields(models.ValidModerationStatuses))
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":           status,
		"updated_at":       now,
		"moderated_by":     claims.Username(),
		"moderated_at":     now,
		"moderation_notes": notes,
	}
	if status == string(models.ReviewDeleted) {
		set["is_active"] = false
		set["deleted_by"] = claims.Username()
		set["deleted_at"] = now
	}

	if _, err := s.reviewRepo.Update(ctx, oid, set, nil); err != nil {
		return nil, err
	}

	if existing.Status != status {
		if _, _, err := s.RecomputeRestaurantRating(ctx, existing.RestaurantID); err != nil {
			s.log.Warn("restaurant rating recompute failed after moderation",
				zap.String("restaurant_id", existing.RestaurantID),
				zap.Error(err))
		}
	}

	updated, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

func (s *reviewService) FeatureReview(ctx context.Context, id string, featured bool, claims *auth.Claims) (*models.Review, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	if !claims.IsAdmin() && !s.isRestaurantOwner(ctx, existing.RestaurantID, claims) {
		return nil, ErrForbidden
	}

	if featured && existing.Status != string(models.ReviewPublished) {
		return nil, newValidationError("only published reviews can be featured")
	}

	now := time.Now().UTC()
	set := bson.M{"featured": featured, "updated_at": now}
	if featured {
		set["featured_at"] = now
		set["featured_by"] = claims.Username()
	}

	if _, err := s.reviewRepo.Update(ctx, oid, set, nil); err != nil {
		return nil, err
	}

	updated, err := s.reviewRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

// RecomputeRestaurantRating rebuilds the cached aggregate from the active,
// published reviews of the restaurant. Idempotent: recomputing against an
// unchanged review set writes the same values.
func (s *reviewService) RecomputeRestaurantRating(ctx context.Context, restaurantID string) (float64, int64, error) {
	oid, err := parseID(restaurantID)
	if err != nil {
		return 0, 0, err
	}

	reviews, err := s.reviewRepo.FindPublished(ctx, restaurantID)
	if err != nil {
		return 0, 0, err
	}

	var avgRating float64
	if len(reviews) > 0 {
		var sum float64
		for _, review := range reviews {
			sum += float64(review.Rating)
		}
		avgRating = round1(sum / float64(len(reviews)))
	}
	reviewCount := int64(len(reviews))

	if err := s.restaurantRepo.UpdateRating(ctx, oid, avgRating, reviewCount); err != nil {
		return 0, 0, err
	}

	if s.cache != nil {
		snapshot := &redis.RatingSnapshot{
			AvgRating:   avgRating,
			ReviewCount: reviewCount,
			UpdatedAt:   time.Now().UTC(),
		}
		if err := s.cache.SetRatingSnapshot(restaurantID, snapshot, s.cacheTTL); err != nil {
			s.log.Warn("failed to cache rating snapshot",
				zap.String("restaurant_id", restaurantID),
				zap.Error(err))
		}
	}

	return avgRating, reviewCount, nil
}

func (s *reviewService) isRestaurantOwner(ctx context.Context, restaurantID string, claims *auth.Claims) bool {
	if claims.SubjectID == "" {
		return false
	}
	oid, err := parseID(restaurantID)
	if err != nil {
		return false
	}
	restaurant, err := s.restaurantRepo.GetByID(ctx, oid)
	if err != nil {
		return false
	}
	return restaurant.OwnerID == claims.SubjectID
}
