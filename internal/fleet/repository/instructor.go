package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	fleeterrors "flightline/internal/fleet/errors"
	"flightline/pkg/config"
	"flightline/pkg/model"
)

const (
	InstructorCollectionName = "Instructors"
)

type mongoInstructorRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type InstructorRepository interface {
	Create(ctx context.Context, instructor *model.Instructor) error
	FindByID(ctx context.Context, id string) (*model.Instructor, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Instructor, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, instructor *model.Instructor) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
}

func NewMongoInstructorRepository(cfg *config.Config) InstructorRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInstructorRepository{
		cfg:        cfg,
		collection: db.Collection(InstructorCollectionName),
	}
}

func (r *mongoInstructorRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoInstructorRepository) Create(ctx context.Context, instructor *model.Instructor) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	instructor.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, instructor)
	if err != nil {
		return fmt.Errorf("failed to create instructor: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		instructor.ID = oid.Hex()
	}
	return nil
}

func (r *mongoInstructorRepository) FindByID(ctx context.Context, id string) (*model.Instructor, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	var instructor model.Instructor
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&instructor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fleeterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find instructor: %w", err)
	}

	return &instructor, nil
}

func (r *mongoInstructorRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Instructor, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find instructors: %w", err)
	}
	defer cursor.Close(ctx)

	var instructors []*model.Instructor
	if err = cursor.All(ctx, &instructors); err != nil {
		return nil, fmt.Errorf("failed to decode instructors: %w", err)
	}

	return instructors, nil
}

func (r *mongoInstructorRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count instructors: %w", err)
	}
	return count, nil
}

func (r *mongoInstructorRepository) Update(ctx context.Context, id string, instructor *model.Instructor) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":    instructor.Name,
			"email":   instructor.Email,
			"phone":   instructor.Phone,
			"ratings": instructor.Ratings,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update instructor: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fleeterrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoInstructorRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete instructor: %w", err)
	}

	if result.DeletedCount == 0 {
		return fleeterrors.ErrNotFound
	}

	return nil
}
