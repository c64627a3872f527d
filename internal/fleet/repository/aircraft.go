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
	AircraftCollectionName = "Aircraft"
)

type mongoAircraftRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type AircraftRepository interface {
	Create(ctx context.Context, aircraft *model.Aircraft) error
	FindByID(ctx context.Context, id string) (*model.Aircraft, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Aircraft, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, aircraft *model.Aircraft) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
}

func NewMongoAircraftRepository(cfg *config.Config) AircraftRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAircraftRepository{
		cfg:        cfg,
		collection: db.Collection(AircraftCollectionName),
	}
}

func (r *mongoAircraftRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAircraftRepository) Create(ctx context.Context, aircraft *model.Aircraft) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	aircraft.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, aircraft)
	if err != nil {
		return fmt.Errorf("failed to create aircraft: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		aircraft.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAircraftRepository) FindByID(ctx context.Context, id string) (*model.Aircraft, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	var aircraft model.Aircraft
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&aircraft)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fleeterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find aircraft: %w", err)
	}

	return &aircraft, nil
}

func (r *mongoAircraftRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Aircraft, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "tail_number", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find aircraft: %w", err)
	}
	defer cursor.Close(ctx)

	var fleet []*model.Aircraft
	if err = cursor.All(ctx, &fleet); err != nil {
		return nil, fmt.Errorf("failed to decode aircraft: %w", err)
	}

	return fleet, nil
}

func (r *mongoAircraftRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count aircraft: %w", err)
	}
	return count, nil
}

func (r *mongoAircraftRepository) Update(ctx context.Context, id string, aircraft *model.Aircraft) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"tail_number": aircraft.TailNumber,
			"make_model":  aircraft.MakeModel,
			"type":        aircraft.Type,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update aircraft: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fleeterrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoAircraftRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete aircraft: %w", err)
	}

	if result.DeletedCount == 0 {
		return fleeterrors.ErrNotFound
	}

	return nil
}
