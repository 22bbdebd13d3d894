package repositories

import (
	"context"
	"time"

	"github.com/lumeo-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetFeed(ctx context.Context, viewerID primitive.ObjectID) ([]models.EnrichedPost, error)
	GetPostsByAuthor(ctx context.Context, email string) ([]models.Post, error)
	GetPostByID(ctx context.Context, id, viewerID primitive.ObjectID) (*models.EnrichedPost, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost inserts a new post document
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// favoriteLookup joins the viewer's favorite for each post and folds it
// into an isFavorite flag.
func favoriteLookup(viewerID primitive.ObjectID) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "favorites"},
			{Key: "let", Value: bson.D{{Key: "postId", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$postId", "$$postId"}}},
					bson.D{{Key: "$eq", Value: bson.A{"$userId", viewerID}}},
				}}}}}}},
			}},
			{Key: "as", Value: "favoriteData"},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "isFavorite", Value: bson.D{
			{Key: "$gt", Value: bson.A{bson.D{{Key: "$size", Value: "$favoriteData"}}, 0}},
		}}}}},
	}
}

// GetFeed returns all posts newest-first, each annotated with the
// viewer's favorite flag and the author's username joined on the
// denormalized author email.
func (r *MongoPostRepository) GetFeed(ctx context.Context, viewerID primitive.ObjectID) ([]models.EnrichedPost, error) {
	pipeline := mongo.Pipeline{}
	pipeline = append(pipeline, favoriteLookup(viewerID)...)
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "email"},
			{Key: "as", Value: "authorData"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$authorData"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{{Key: "authorUsername", Value: "$authorData.username"}}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "favoriteData", Value: 0}, {Key: "authorData", Value: 0}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.EnrichedPost{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostsByAuthor returns the author's posts newest-first. This path
// carries no favorite or username enrichment.
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, email string) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"author": email}, findOptions)
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

// GetPostByID returns a single post with the viewer's favorite flag.
// TODO: the author lookup joins the email-valued author field against
// users._id, so authorUsername never resolves here; join on email the
// way GetFeed does once clients can absorb the change.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id, viewerID primitive.ObjectID) (*models.EnrichedPost, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}
	pipeline = append(pipeline, favoriteLookup(viewerID)...)
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "authorData"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$authorData"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{{Key: "authorUsername", Value: "$authorData.username"}}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "favoriteData", Value: 0}, {Key: "authorData", Value: 0}}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.EnrichedPost
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}
