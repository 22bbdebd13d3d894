package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message represents a single message within a conversation.
type Message struct {
	ID             primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversationId"`
	Sender         primitive.ObjectID `json:"sender" bson:"sender"`
	Text           string             `json:"text" bson:"text"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// EnrichedMessage is a message joined with its sender's profile.
type EnrichedMessage struct {
	Message    `bson:",inline"`
	SenderData User `json:"senderData" bson:"senderData"`
}

// SendMessageRequest defines the request body for sending a message.
// Either an existing conversationId or a recipientId must be provided.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	RecipientID    string `json:"recipientId,omitempty"`
	Text           string `json:"text" validate:"required"`
}
