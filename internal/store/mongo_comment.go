package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trailfeed/trailfeed-backend/internal/models"
)

type mongoCommentStore struct {
	col *mongo.Collection
}

type commentDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	ExperienceID string             `bson:"experience_id"`
	CreatedAt    time.Time          `bson:"created_at"`
	Text         string             `bson:"text"`
}

func (d *commentDoc) toModel() *models.Comment {
	return &models.Comment{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		ExperienceID: d.ExperienceID,
		CreatedAt:    d.CreatedAt,
		Text:         d.Text,
	}
}

func (s *mongoCommentStore) Create(ctx context.Context, comment *models.Comment) error {
	doc := commentDoc{
		UserID:       comment.UserID,
		ExperienceID: comment.ExperienceID,
		CreatedAt:    comment.CreatedAt,
		Text:         comment.Text,
	}

	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	comment.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *mongoCommentStore) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc commentDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *mongoCommentStore) ListByExperience(ctx context.Context, experienceID string) ([]*models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.col.Find(ctx, bson.M{"experience_id": experienceID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	comments := make([]*models.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, docs[i].toModel())
	}
	return comments, nil
}

func (s *mongoCommentStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
