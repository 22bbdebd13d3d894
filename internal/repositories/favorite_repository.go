package repositories

import (
	"context"
	"time"

	"github.com/lumeo-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FavoriteRepository defines the interface for favorite data operations
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, postID primitive.ObjectID) (bool, error)
	AddFavorite(ctx context.Context, favorite *models.Favorite) error
	RemoveFavorite(ctx context.Context, userID, postID primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error)
	ListPostsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
}

// MongoFavoriteRepository implements FavoriteRepository for MongoDB
type MongoFavoriteRepository struct {
	collection *mongo.Collection
}

// NewMongoFavoriteRepository creates a new MongoFavoriteRepository
func NewMongoFavoriteRepository(db *mongo.Database) *MongoFavoriteRepository {
	return &MongoFavoriteRepository{collection: db.Collection("favorites")}
}

// Exists reports whether the user already favorited the post
func (r *MongoFavoriteRepository) Exists(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID, "postId": postID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddFavorite inserts a favorite document. Uniqueness of the
// (userId, postId) pair is the caller's pre-insert Exists check; there
// is no unique index backing it.
func (r *MongoFavoriteRepository) AddFavorite(ctx context.Context, favorite *models.Favorite) error {
	favorite.ID = primitive.NewObjectID()
	favorite.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, favorite)
	return err
}

// RemoveFavorite deletes exactly one matching favorite, returning
// ErrNotFound when none existed
func (r *MongoFavoriteRepository) RemoveFavorite(ctx context.Context, userID, postID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "postId": postID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's raw favorite documents in database order
func (r *MongoFavoriteRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	favorites := []models.Favorite{}
	if err = cursor.All(ctx, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// ListPostsByUser expands the user's favorites into the full post
// documents they reference
func (r *MongoFavoriteRepository) ListPostsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "posts"},
			{Key: "localField", Value: "postId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "postDetails"},
		}}},
		bson.D{{Key: "$unwind", Value: "$postDetails"}},
		bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$postDetails"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
