package services

import (
	"context"
	"errors"
	"testing"

	"menu_platform/internal/auth"
	"menu_platform/internal/models"
	"menu_platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type mockReviewRepo struct {
	InsertFunc            func(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	GetByIDFunc           func(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	GetActiveByIDFunc     func(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	GetByReviewNumberFunc func(ctx context.Context, reviewNumber string) (*models.Review, error)
	ListFunc              func(ctx context.Context, filter repository.ReviewFilter) ([]models.Review, int64, error)
	FindPublishedFunc     func(ctx context.Context, restaurantID string) ([]models.Review, error)
	CountByRatingFunc     func(ctx context.Context, restaurantID string, rating int) (int64, error)
	UpdateFunc            func(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error)
	IncrementCounterFunc  func(ctx context.Context, id primitive.ObjectID, field string) error
	EscalateFlaggedFunc   func(ctx context.Context, id primitive.ObjectID, threshold int) (bool, error)
}

func (m *mockReviewRepo) Insert(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, review)
	}
	return primitive.NewObjectID(), nil
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockReviewRepo) GetActiveByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	if m.GetActiveByIDFunc != nil {
		return m.GetActiveByIDFunc(ctx, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockReviewRepo) GetByReviewNumber(ctx context.Context, reviewNumber string) (*models.Review, error) {
	if m.GetByReviewNumberFunc != nil {
		return m.GetByReviewNumberFunc(ctx, reviewNumber)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockReviewRepo) List(ctx context.Context, filter repository.ReviewFilter) ([]models.Review, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockReviewRepo) FindPublished(ctx context.Context, restaurantID string) ([]models.Review, error) {
	if m.FindPublishedFunc != nil {
		return m.FindPublishedFunc(ctx, restaurantID)
	}
	return nil, nil
}

func (m *mockReviewRepo) CountByRating(ctx context.Context, restaurantID string, rating int) (int64, error) {
	if m.CountByRatingFunc != nil {
		return m.CountByRatingFunc(ctx, restaurantID, rating)
	}
	return 0, nil
}

func (m *mockReviewRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, set, inc)
	}
	return 1, nil
}

func (m *mockReviewRepo) IncrementCounter(ctx context.Context, id primitive.ObjectID, field string) error {
	if m.IncrementCounterFunc != nil {
		return m.IncrementCounterFunc(ctx, id, field)
	}
	return nil
}

func (m *mockReviewRepo) EscalateFlagged(ctx context.Context, id primitive.ObjectID, threshold int) (bool, error) {
	if m.EscalateFlaggedFunc != nil {
		return m.EscalateFlaggedFunc(ctx, id, threshold)
	}
	return false, nil
}

type mockRestaurantRepo struct {
	GetByIDFunc      func(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error)
	UpdateRatingFunc func(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error
}

func (m *mockRestaurantRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockRestaurantRepo) UpdateRating(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error {
	if m.UpdateRatingFunc != nil {
		return m.UpdateRatingFunc(ctx, id, avgRating, reviewCount)
	}
	return nil
}

func newReviewService(reviewRepo repository.ReviewRepository, restaurantRepo repository.RestaurantRepository) ReviewService {
	return NewReviewService(reviewRepo, restaurantRepo, nil, 5, 0, zap.NewNop())
}

func adminClaims() *auth.Claims {
	return &auth.Claims{
		SubjectID:         "admin-1",
		PreferredUsername: "admin@example.com",
		Roles:             []string{"admin"},
	}
}

func existingRestaurant() (*mockRestaurantRepo, primitive.ObjectID) {
	id := primitive.NewObjectID()
	repo := &mockRestaurantRepo{
		GetByIDFunc: func(ctx context.Context, rid primitive.ObjectID) (*models.Restaurant, error) {
			return &models.Restaurant{ID: rid, Name: "Testaurant", OwnerID: "owner-1"}, nil
		},
	}
	return repo, id
}

func TestCreateReviewRejectsOutOfRangeRating(t *testing.T) {
	restaurantRepo, restaurantID := existingRestaurant()
	svc := newReviewService(&mockReviewRepo{}, restaurantRepo)

	for _, rating := range []int{-1, 6, 10} {
		_, err := svc.CreateReview(context.Background(), &ReviewInput{
			RestaurantID: restaurantID.Hex(),
			Rating:       rating,
			Text:         "bad rating",
		}, testClaims())
		if !IsValidation(err) {
			t.Errorf("rating %d: expected validation error, got %v", rating, err)
		}
	}

	// zero reads as a missing required field
	_, err := svc.CreateReview(context.Background(), &ReviewInput{
		RestaurantID: restaurantID.Hex(),
		Rating:       0,
		Text:         "no rating",
	}, testClaims())
	if !IsValidation(err) {
		t.Errorf("rating 0: expected validation error, got %v", err)
	}
}

func TestCreateReviewAcceptsBoundaryRatings(t *testing.T) {
	restaurantRepo, restaurantID := existingRestaurant()

	for _, rating := range []int{1, 5} {
		svc := newReviewService(&mockReviewRepo{}, restaurantRepo)
		review, err := svc.CreateReview(context.Background(), &ReviewInput{
			RestaurantID: restaurantID.Hex(),
			Rating:       rating,
			Text:         "fine",
		}, testClaims())
		if err != nil {
			t.Fatalf("rating %d: unexpected error: %v", rating, err)
		}
		if review.Status != "published" {
			t.Errorf("expected status published, got %q", review.Status)
		}
		if !review.IsActive {
			t.Error("expected review to be active")
		}
		if review.CustomerID != "cust-1" {
			t.Errorf("expected customer_id from claims, got %q", review.CustomerID)
		}
		if review.HelpfulCount != 0 || review.ViewCount != 0 || review.FlagCount != 0 {
			t.Error("expected counters to start at zero")
		}
	}
}

func TestCreateReviewMissingRestaurant(t *testing.T) {
	restaurantRepo := &mockRestaurantRepo{}
	svc := newReviewService(&mockReviewRepo{}, restaurantRepo)

	_, err := svc.CreateReview(context.Background(), &ReviewInput{
		RestaurantID: primitive.NewObjectID().Hex(),
		Rating:       4,
		Text:         "great",
	}, testClaims())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateReviewTriggersRecompute(t *testing.T) {
	restaurantID := primitive.NewObjectID()

	var gotAvg float64
	var gotCount int64
	restaurantRepo := &mockRestaurantRepo{
		GetByIDFunc: func(ctx context.Context, rid primitive.ObjectID) (*models.Restaurant, error) {
			return &models.Restaurant{ID: rid}, nil
		},
		UpdateRatingFunc: func(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error {
			gotAvg = avgRating
			gotCount = reviewCount
			return nil
		},
	}
	reviewRepo := &mockReviewRepo{
		FindPublishedFunc: func(ctx context.Context, rid string) ([]models.Review, error) {
			return []models.Review{{Rating: 4}, {Rating: 5}, {Rating: 3}}, nil
		},
	}
	svc := newReviewService(reviewRepo, restaurantRepo)

	_, err := svc.CreateReview(context.Background(), &ReviewInput{
		RestaurantID: restaurantID.Hex(),
		Rating:       4,
		Text:         "good",
	}, testClaims())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAvg != 4.0 {
		t.Errorf("expected avg_rating 4.0, got %v", gotAvg)
	}
	if gotCount != 3 {
		t.Errorf("expected review_count 3, got %v", gotCount)
	}
}

func TestRecomputeAfterSoftDelete(t *testing.T) {
	restaurantID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	published := []models.Review{{Rating: 4}, {Rating: 5}, {Rating: 3}}

	var gotAvg float64
	var gotCount int64
	restaurantRepo := &mockRestaurantRepo{
		GetByIDFunc: func(ctx context.Context, rid primitive.ObjectID) (*models.Restaurant, error) {
			return &models.Restaurant{ID: rid, OwnerID: "owner-1"}, nil
		},
		UpdateRatingFunc: func(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error {
			gotAvg = avgRating
			gotCount = reviewCount
			return nil
		},
	}
	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			return &models.Review{
				ID:           reviewID,
				RestaurantID: restaurantID.Hex(),
				CustomerID:   "cust-1",
				Rating:       3,
				Status:       "published",
				IsActive:     true,
			}, nil
		},
		UpdateFunc: func(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error) {
			// soft delete drops the rating-3 review from the published set
			published = []models.Review{{Rating: 4}, {Rating: 5}}
			return 1, nil
		},
		FindPublishedFunc: func(ctx context.Context, rid string) ([]models.Review, error) {
			return published, nil
		},
	}
	svc := newReviewService(reviewRepo, restaurantRepo)

	if err := svc.DeleteReview(context.Background(), reviewID.Hex(), testClaims()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAvg != 4.5 {
		t.Errorf("expected avg_rating 4.5 after delete, got %v", gotAvg)
	}
	if gotCount != 2 {
		t.Errorf("expected review_count 2 after delete, got %v", gotCount)
	}
}

func TestRecomputeEmptyReviewSet(t *testing.T) {
	restaurantID := primitive.NewObjectID()

	var gotAvg float64 = -1
	var gotCount int64 = -1
	restaurantRepo := &mockRestaurantRepo{
		UpdateRatingFunc: func(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error {
			gotAvg = avgRating
			gotCount = reviewCount
			return nil
		},
	}
	svc := newReviewService(&mockReviewRepo{}, restaurantRepo)

	avg, count, err := svc.RecomputeRestaurantRating(context.Background(), restaurantID.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 0 || count != 0 || gotAvg != 0 || gotCount != 0 {
		t.Errorf("expected zeroed aggregate, got avg=%v count=%v written avg=%v count=%v", avg, count, gotAvg, gotCount)
	}
}

func TestFlagReviewEscalatesAtThreshold(t *testing.T) {
	reviewID := primitive.NewObjectID()
	review := &models.Review{
		ID:       reviewID,
		Status:   "published",
		IsActive: true,
	}

	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			snap := *review
			return &snap, nil
		},
		UpdateFunc: func(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error) {
			if reasons, ok := set["flagged_reason"].([]string); ok {
				review.FlaggedReason = reasons
			}
			if n, ok := inc["flag_count"]; ok && n == 1 {
				review.FlagCount++
			}
			return 1, nil
		},
		EscalateFlaggedFunc: func(ctx context.Context, id primitive.ObjectID, threshold int) (bool, error) {
			if review.Status == "published" && review.FlagCount >= threshold {
				review.Status = "under_review"
				return true, nil
			}
			return false, nil
		},
	}
	svc := newReviewService(reviewRepo, &mockRestaurantRepo{})

	for i := 1; i <= 5; i++ {
		updated, err := svc.FlagReview(context.Background(), reviewID.Hex(), "spam")
		if err != nil {
			t.Fatalf("flag %d: unexpected error: %v", i, err)
		}
		if i < 5 && updated.Status != "published" {
			t.Errorf("flag %d: expected status published, got %q", i, updated.Status)
		}
		if i == 5 && updated.Status != "under_review" {
			t.Errorf("flag 5: expected status under_review, got %q", updated.Status)
		}
	}

	if len(review.FlaggedReason) != 1 {
		t.Errorf("expected deduplicated reason list, got %v", review.FlaggedReason)
	}
	if review.FlagCount != 5 {
		t.Errorf("expected flag_count 5, got %d", review.FlagCount)
	}
}

func TestUpdateReviewRequiresOwnershipOrAdmin(t *testing.T) {
	reviewID := primitive.NewObjectID()
	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			return &models.Review{ID: reviewID, CustomerID: "someone-else", Rating: 4}, nil
		},
	}
	svc := newReviewService(reviewRepo, &mockRestaurantRepo{})

	_, err := svc.UpdateReview(context.Background(), reviewID.Hex(), &ReviewPatch{}, testClaims())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.UpdateReview(context.Background(), reviewID.Hex(), &ReviewPatch{}, adminClaims()); err != nil {
		t.Fatalf("admin update should pass authorization, got %v", err)
	}
}

func TestUpdateReviewRatingChangeTriggersRecompute(t *testing.T) {
	restaurantID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	recomputed := false
	restaurantRepo := &mockRestaurantRepo{
		UpdateRatingFunc: func(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error {
			recomputed = true
			return nil
		},
	}
	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			return &models.Review{ID: reviewID, RestaurantID: restaurantID.Hex(), CustomerID: "cust-1", Rating: 4}, nil
		},
	}
	svc := newReviewService(reviewRepo, restaurantRepo)

	rating := 2
	if _, err := svc.UpdateReview(context.Background(), reviewID.Hex(), &ReviewPatch{Rating: &rating}, testClaims()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recomputed {
		t.Error("expected rating change to trigger recompute")
	}

	// same rating: no recompute
	recomputed = false
	rating = 4
	if _, err := svc.UpdateReview(context.Background(), reviewID.Hex(), &ReviewPatch{Rating: &rating}, testClaims()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recomputed {
		t.Error("unchanged rating should not trigger recompute")
	}
}

func TestModerateReviewAdminOnly(t *testing.T) {
	svc := newReviewService(&mockReviewRepo{}, &mockRestaurantRepo{})

	_, err := svc.ModerateReview(context.Background(), primitive.NewObjectID().Hex(), "hidden", "", testClaims())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestModerateReviewRejectsUnknownStatus(t *testing.T) {
	svc := newReviewService(&mockReviewRepo{}, &mockRestaurantRepo{})

	_, err := svc.ModerateReview(context.Background(), primitive.NewObjectID().Hex(), "under_review", "", adminClaims())
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestModerateReviewDeletedSetsInactiveAndRecomputes(t *testing.T) {
	restaurantID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	recomputed := false
	restaurantRepo := &mockRestaurantRepo{
		UpdateRatingFunc: func(ctx context.Context, id primitive.ObjectID, avgRating float64, reviewCount int64) error {
			recomputed = true
			return nil
		},
	}

	var captured bson.M
	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			return &models.Review{ID: reviewID, RestaurantID: restaurantID.Hex(), Status: "published", IsActive: true}, nil
		},
		UpdateFunc: func(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error) {
			captured = set
			return 1, nil
		},
	}
	svc := newReviewService(reviewRepo, restaurantRepo)

	_, err := svc.ModerateReview(context.Background(), reviewID.Hex(), "deleted", "abuse", adminClaims())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured["is_active"] != false {
		t.Error("expected deleted moderation to deactivate the review")
	}
	if captured["moderation_notes"] != "abuse" {
		t.Errorf("expected moderation notes to be stored, got %v", captured["moderation_notes"])
	}
	if !recomputed {
		t.Error("expected moderation status change to trigger recompute")
	}
}

func TestFeatureReviewRequiresPublishedStatus(t *testing.T) {
	reviewID := primitive.NewObjectID()
	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			return &models.Review{ID: reviewID, Status: "hidden"}, nil
		},
	}
	svc := newReviewService(reviewRepo, &mockRestaurantRepo{})

	_, err := svc.FeatureReview(context.Background(), reviewID.Hex(), true, adminClaims())
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRespondToReviewTracksEditedFlag(t *testing.T) {
	reviewID := primitive.NewObjectID()
	existingText := ""

	var captured bson.M
	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			return &models.Review{
				ID:       reviewID,
				Response: models.ReviewResponse{Text: existingText},
			}, nil
		},
		UpdateFunc: func(ctx context.Context, id primitive.ObjectID, set bson.M, inc bson.M) (int64, error) {
			captured = set
			return 1, nil
		},
	}
	svc := newReviewService(reviewRepo, &mockRestaurantRepo{})

	if _, err := svc.RespondToReview(context.Background(), reviewID.Hex(), "thanks!", "", adminClaims()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response := captured["response"].(models.ReviewResponse)
	if response.IsEdited {
		t.Error("first response should not be marked edited")
	}
	if response.AuthorTitle != "Restaurant Representative" {
		t.Errorf("expected default author title, got %q", response.AuthorTitle)
	}

	existingText = "thanks!"
	if _, err := svc.RespondToReview(context.Background(), reviewID.Hex(), "updated reply", "Manager", adminClaims()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response = captured["response"].(models.ReviewResponse)
	if !response.IsEdited {
		t.Error("replacing an existing response should be marked edited")
	}
}

func TestGetReviewInvalidID(t *testing.T) {
	svc := newReviewService(&mockReviewRepo{}, &mockRestaurantRepo{})

	_, err := svc.GetReviewByID(context.Background(), "12345")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestMarkHelpfulIncrementsRequestedCounter(t *testing.T) {
	reviewID := primitive.NewObjectID()

	var incremented string
	reviewRepo := &mockReviewRepo{
		GetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
			return &models.Review{ID: reviewID}, nil
		},
		IncrementCounterFunc: func(ctx context.Context, id primitive.ObjectID, field string) error {
			incremented = field
			return nil
		},
	}
	svc := newReviewService(reviewRepo, &mockRestaurantRepo{})

	if _, err := svc.MarkHelpful(context.Background(), reviewID.Hex(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if incremented != "helpful_count" {
		t.Errorf("expected helpful_count increment, got %q", incremented)
	}

	if _, err := svc.MarkHelpful(context.Background(), reviewID.Hex(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if incremented != "unhelpful_count" {
		t.Errorf("expected unhelpful_count increment, got %q", incremented)
	}
}
