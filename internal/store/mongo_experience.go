package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trailfeed/trailfeed-backend/internal/models"
)

type mongoExperienceStore struct {
	col *mongo.Collection
}

type experienceDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Location    locationDoc        `bson:"location"`
	Images      []string           `bson:"images"`
	DateOfVisit dateRangeDoc       `bson:"date_of_visit"`
	Categories  []string           `bson:"categories"`
	Tips        []string           `bson:"tips"`
	Budget      budgetDoc          `bson:"budget"`
	Rating      int                `bson:"rating"`
	Likes       []string           `bson:"likes"`
}

func (d *experienceDoc) toModel() *models.Experience {
	exp := &models.Experience{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Title:       d.Title,
		Description: d.Description,
		Location: models.Location{
			City:        d.Location.City,
			Country:     d.Location.Country,
			Coordinates: d.Location.Coordinates,
		},
		Images: d.Images,
		DateOfVisit: models.DateRange{
			StartDate: d.DateOfVisit.StartDate,
			EndDate:   d.DateOfVisit.EndDate,
		},
		Categories: d.Categories,
		Tips:       d.Tips,
		Budget:     models.Budget(d.Budget),
		Rating:     d.Rating,
		Likes:      d.Likes,
	}
	if exp.Images == nil {
		exp.Images = []string{}
	}
	if exp.Categories == nil {
		exp.Categories = []string{}
	}
	if exp.Tips == nil {
		exp.Tips = []string{}
	}
	if exp.Likes == nil {
		exp.Likes = []string{}
	}
	return exp
}

func experienceToDoc(exp *models.Experience) experienceDoc {
	return experienceDoc{
		UserID:      exp.UserID,
		CreatedAt:   exp.CreatedAt,
		UpdatedAt:   exp.UpdatedAt,
		Title:       exp.Title,
		Description: exp.Description,
		Location: locationDoc{
			City:        exp.Location.City,
			Country:     exp.Location.Country,
			Coordinates: exp.Location.Coordinates,
		},
		Images: exp.Images,
		DateOfVisit: dateRangeDoc{
			StartDate: exp.DateOfVisit.StartDate,
			EndDate:   exp.DateOfVisit.EndDate,
		},
		Categories: exp.Categories,
		Tips:       exp.Tips,
		Budget:     budgetDoc(exp.Budget),
		Rating:     exp.Rating,
		Likes:      exp.Likes,
	}
}

// buildExperienceFilter translates an ExperienceFilter into a Mongo query.
// The keyword is quoted so it matches as a literal substring, case-insensitive,
// over title, city, and country.
func buildExperienceFilter(f ExperienceFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["categories"] = f.Category
	}
	if f.Country != "" {
		filter["location.country"] = f.Country
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Keyword != "" {
		regex := primitive.Regex{Pattern: regexp.QuoteMeta(f.Keyword), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"location.city": regex},
			bson.M{"location.country": regex},
		}
	}
	return filter
}

func (s *mongoExperienceStore) Create(ctx context.Context, exp *models.Experience) error {
	doc := experienceToDoc(exp)
	if doc.Likes == nil {
		doc.Likes = []string{}
	}

	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	exp.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *mongoExperienceStore) GetByID(ctx context.Context, id string) (*models.Experience, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc experienceDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *mongoExperienceStore) Update(ctx context.Context, id string, upd models.ExperienceUpdate) (*models.Experience, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Location != nil {
		set["location"] = locationDoc{
			City:        upd.Location.City,
			Country:     upd.Location.Country,
			Coordinates: upd.Location.Coordinates,
		}
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}
	if upd.DateOfVisit != nil {
		set["date_of_visit"] = dateRangeDoc{
			StartDate: upd.DateOfVisit.StartDate,
			EndDate:   upd.DateOfVisit.EndDate,
		}
	}
	if upd.Categories != nil {
		set["categories"] = *upd.Categories
	}
	if upd.Tips != nil {
		set["tips"] = *upd.Tips
	}
	if upd.Budget != nil {
		set["budget"] = budgetDoc(*upd.Budget)
	}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc experienceDoc
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *mongoExperienceStore) Delete(ctx context.Context, id string) error {
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

func (s *mongoExperienceStore) List(ctx context.Context, filter ExperienceFilter) ([]*models.Experience, int64, error) {
	query := buildExperienceFilter(filter)

	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * PageSize)).
		SetLimit(int64(PageSize))

	cursor, err := s.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []experienceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	experiences := make([]*models.Experience, 0, len(docs))
	for i := range docs {
		experiences = append(experiences, docs[i].toModel())
	}
	return experiences, total, nil
}

// AddLike uses $addToSet so concurrent likes from the same user collapse to one entry.
func (s *mongoExperienceStore) AddLike(ctx context.Context, id string, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.col.UpdateByID(ctx, oid, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoExperienceStore) RemoveLike(ctx context.Context, id string, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.col.UpdateByID(ctx, oid, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
