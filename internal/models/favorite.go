package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite marks a post as favorited by a user. At most one document
// exists per (userId, postId) pair, enforced by a pre-insert check.
type Favorite struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	PostID    primitive.ObjectID `json:"postId" bson:"postId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// FavoriteRequest defines the request body for adding or removing a favorite
type FavoriteRequest struct {
	PostID string `json:"postId" validate:"required"`
}
