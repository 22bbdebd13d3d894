package config

import (
	"context"
	"time"

	"github.com/lumeo-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitDB initializes and returns the MongoDB client. The client is
// safe for concurrent use and is the only cross-request resource.
func InitDB(cfg *Config) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	logger.Info.Println("Successfully connected to MongoDB!")
	return client, nil
}

// CloseDB disconnects the MongoDB client
func CloseDB(client *mongo.Client) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error.Printf("Error closing MongoDB connection: %v", err)
	} else {
		logger.Info.Println("MongoDB connection closed.")
	}
}
