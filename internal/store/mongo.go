package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trailfeed/trailfeed-backend/internal/models"
)

const (
	usersCollection       = "users"
	experiencesCollection = "experiences"
	commentsCollection    = "comments"
)

// NewMongoStores returns the repository set backed by MongoDB.
func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Users:       &mongoUserStore{col: db.Collection(usersCollection)},
		Experiences: &mongoExperienceStore{col: db.Collection(experiencesCollection)},
		Comments: &mongoCommentStore{
			col: db.Collection(commentsCollection),
		},
	}
}

// EnsureMongoIndexes creates the indexes the listing and comment queries rely on.
// Called on startup from main after Mongo has connected.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	experienceIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_id"),
		},
		{
			Keys:    bson.D{{Key: "categories", Value: 1}},
			Options: options.Index().SetName("idx_categories"),
		},
		{
			Keys:    bson.D{{Key: "location.country", Value: 1}},
			Options: options.Index().SetName("idx_country"),
		},
	}
	if _, err := db.Collection(experiencesCollection).Indexes().CreateMany(ctx, experienceIndexes); err != nil {
		return err
	}

	commentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "experience_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_experience_created_at"),
		},
	}
	if _, err := db.Collection(commentsCollection).Indexes().CreateMany(ctx, commentIndexes); err != nil {
		return err
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
	}
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes)
	return err
}

// Document shapes. Models carry string IDs so adapters stay swappable; the
// Mongo documents use ObjectIDs and convert at the boundary.

type locationDoc struct {
	City        string              `bson:"city"`
	Country     string              `bson:"country"`
	Coordinates *models.Coordinates `bson:"coordinates,omitempty"`
}

type dateRangeDoc struct {
	StartDate *time.Time `bson:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty"`
}

type budgetDoc struct {
	Amount   float64 `bson:"amount"`
	Currency string  `bson:"currency"`
}
