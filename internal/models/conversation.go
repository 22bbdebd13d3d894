package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LastMessage is a denormalized snapshot of the most recent message,
// kept on the conversation for list-view efficiency.
type LastMessage struct {
	Text   string             `json:"text" bson:"text"`
	SentAt time.Time          `json:"sentAt" bson:"sentAt"`
	Sender primitive.ObjectID `json:"sender" bson:"sender"`
}

// Conversation represents a direct-message thread between participants.
type Conversation struct {
	ID           primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	Participants []primitive.ObjectID `json:"participants" bson:"participants"`
	LastMessage  *LastMessage         `json:"lastMessage" bson:"lastMessage"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// ConversationSummary is a conversation enriched for the list view with
// full participant profiles and the resolved last-message sender.
type ConversationSummary struct {
	Conversation      `bson:",inline"`
	ParticipantsData  []User `json:"participantsData" bson:"participantsData"`
	LastMessageSender *User  `json:"lastMessageSender,omitempty" bson:"lastMessageSender,omitempty"`
}

// ConversationDetail is a conversation with its messages embedded,
// sorted newest-first.
type ConversationDetail struct {
	Conversation `bson:",inline"`
	Messages     []Message `json:"messages" bson:"messages"`
}

// CreateConversationRequest defines the request body for creating a
// conversation. Participants are user ids or emails.
type CreateConversationRequest struct {
	Participants []string `json:"participants" validate:"required"`
}
