package repositories

import (
	"context"
	"time"

	"github.com/lumeo-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConversationRepository defines the interface for conversation data operations
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error)
	GetWithMessages(ctx context.Context, id primitive.ObjectID) (*models.ConversationDetail, error)
	FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error)
	SetLastMessage(ctx context.Context, id primitive.ObjectID, last models.LastMessage) error
}

// MongoConversationRepository implements ConversationRepository for MongoDB
type MongoConversationRepository struct {
	collection *mongo.Collection
}

// NewMongoConversationRepository creates a new MongoConversationRepository
func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{collection: db.Collection("conversations")}
}

// CreateConversation inserts a new conversation document. No dedup
// against an existing participant set happens on this path.
func (r *MongoConversationRepository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	conversation.ID = primitive.NewObjectID()
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt
	_, err := r.collection.InsertOne(ctx, conversation)
	return err
}

// ListByParticipant returns the user's conversations newest-updated
// first, with participant profiles and the last-message sender joined
// in. Password hashes are projected out of the joined profiles.
func (r *MongoConversationRepository) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "participants", Value: userID}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "let", Value: bson.D{{Key: "participantIds", Value: "$participants"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$in", Value: bson.A{"$_id", "$$participantIds"}},
				}}}}},
				bson.D{{Key: "$project", Value: bson.D{{Key: "password", Value: 0}}}},
			}},
			{Key: "as", Value: "participantsData"},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "let", Value: bson.D{{Key: "senderId", Value: "$lastMessage.sender"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{"$_id", "$$senderId"}},
				}}}}},
				bson.D{{Key: "$project", Value: bson.D{{Key: "password", Value: 0}}}},
			}},
			{Key: "as", Value: "lastMessageSender"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$lastMessageSender"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	conversations := []models.ConversationSummary{}
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// GetWithMessages returns a conversation with its full transcript
// embedded, sorted newest-first
func (r *MongoConversationRepository) GetWithMessages(ctx context.Context, id primitive.ObjectID) (*models.ConversationDetail, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "messages"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "conversationId"},
			{Key: "as", Value: "messages"},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{{Key: "messages", Value: bson.D{
			{Key: "$sortArray", Value: bson.D{
				{Key: "input", Value: "$messages"},
				{Key: "sortBy", Value: bson.D{{Key: "createdAt", Value: -1}}},
			}},
		}}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []models.ConversationDetail
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return nil, ErrNotFound
	}
	return &conversations[0], nil
}

// FindByParticipants returns a conversation whose participant list
// contains both users, or ErrNotFound
func (r *MongoConversationRepository) FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	var conversation models.Conversation
	filter := bson.M{"participants": bson.M{"$all": bson.A{a, b}}}
	err := r.collection.FindOne(ctx, filter).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// SetLastMessage refreshes updatedAt and the denormalized lastMessage
// snapshot after a send
func (r *MongoConversationRepository) SetLastMessage(ctx context.Context, id primitive.ObjectID, last models.LastMessage) error {
	update := bson.M{"$set": bson.M{
		"updatedAt":   time.Now(),
		"lastMessage": last,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
