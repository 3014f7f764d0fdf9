package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReviewNumber string             `json:"review_number" bson:"review_number"`
	RestaurantID string             `json:"restaurant_id" bson:"restaurant_id"`
	CustomerID   string             `json:"customer_id" bson:"customer_id"`

	// Optional scoping to a staff member, menu item, or order.
	StaffID    string `json:"staff_id,omitempty" bson:"staff_id,omitempty"`
	MenuItemID string `json:"menu_item_id,omitempty" bson:"menu_item_id,omitempty"`
	OrderID    string `json:"order_id,omitempty" bson:"order_id,omitempty"`

	Rating int    `json:"rating" bson:"rating"` // 1-5
	Title  string `json:"title,omitempty" bson:"title,omitempty"`
	Text   string `json:"text" bson:"text"`
	Date   time.Time `json:"date" bson:"date"`

	Media      ReviewMedia    `json:"media" bson:"media"`
	Response   ReviewResponse `json:"response" bson:"response"`
	SubRatings SubRatings     `json:"sub_ratings" bson:"sub_ratings"`

	// Server-maintained engagement counters; never accepted from callers.
	HelpfulCount   int `json:"helpful_count" bson:"helpful_count"`
	UnhelpfulCount int `json:"unhelpful_count" bson:"unhelpful_count"`
	ViewCount      int `json:"view_count" bson:"view_count"`
	FlagCount      int `json:"flag_count" bson:"flag_count"`

	FlaggedReason []string `json:"flagged_reason,omitempty" bson:"flagged_reason,omitempty"`

	Status   string `json:"status" bson:"status"` // draft, published, hidden, deleted, under_review
	IsActive bool   `json:"is_active" bson:"is_active"`

	Featured   bool       `json:"featured" bson:"featured"`
	FeaturedAt *time.Time `json:"featured_at,omitempty" bson:"featured_at,omitempty"`
	FeaturedBy string     `json:"featured_by,omitempty" bson:"featured_by,omitempty"`

	ModeratedBy     string     `json:"moderated_by,omitempty" bson:"moderated_by,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty" bson:"moderated_at,omitempty"`
	ModerationNotes string     `json:"moderation_notes,omitempty" bson:"moderation_notes,omitempty"`

	DeletedBy string     `json:"deleted_by,omitempty" bson:"deleted_by,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`

	Tags       []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Categories []string `json:"categories,omitempty" bson:"categories,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type ReviewMedia struct {
	Images []string   `json:"images" bson:"images"`
	Video  MediaAsset `json:"video" bson:"video"`
	Audio  MediaAsset `json:"audio" bson:"audio"`
}

type MediaAsset struct {
	URL         string `json:"url" bson:"url"`
	Duration    int    `json:"duration" bson:"duration"`
	ContentType string `json:"content_type" bson:"content_type"`
	UploadDate  string `json:"upload_date" bson:"upload_date"`
}

type ReviewResponse struct {
	Text        string `json:"text" bson:"text"`
	AuthorID    string `json:"author_id" bson:"author_id"`
	AuthorTitle string `json:"author_title" bson:"author_title"`
	Date        string `json:"date" bson:"date"`
	IsEdited    bool   `json:"is_edited" bson:"is_edited"`
}

type SubRatings struct {
	Food        int `json:"food" bson:"food"`
	Service     int `json:"service" bson:"service"`
	Ambiance    int `json:"ambiance" bson:"ambiance"`
	Value       int `json:"value" bson:"value"`
	Cleanliness int `json:"cleanliness" bson:"cleanliness"`
}

type ReviewStatus string

const (
	ReviewDraft       ReviewStatus = "draft"
	ReviewPublished   ReviewStatus = "published"
	ReviewHidden      ReviewStatus = "hidden"
	ReviewDeleted     ReviewStatus = "deleted"
	ReviewUnderReview ReviewStatus = "under_review"
)

// ValidModerationStatuses are the statuses an admin may set directly;
// under_review is only entered automatically by flag escalation.
var ValidModerationStatuses = []string{
	string(ReviewPublished),
	string(ReviewHidden),
	string(ReviewDeleted),
}

func IsValidModerationStatus(status string) bool {
	for _, s := range ValidModerationStatuses {
		if s == status {
			return true
		}
	}
	return false
}
