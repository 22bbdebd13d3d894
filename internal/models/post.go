package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a text post stored in the posts collection.
// Author holds the author's email, denormalized at write time.
type Post struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Author    string             `json:"author" bson:"author"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EnrichedPost is a post annotated at read time with the requesting
// user's favorite flag and the author's display username.
type EnrichedPost struct {
	Post           `bson:",inline"`
	IsFavorite     bool   `json:"isFavorite" bson:"isFavorite"`
	AuthorUsername string `json:"authorUsername,omitempty" bson:"authorUsername,omitempty"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required,email"`
}
