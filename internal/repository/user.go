package repository

import (
	"context"
	"errors"
	"time"

	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// IncrementPostCount adjusts the denormalized live-post counter by delta.
	// Decrements are guarded so the counter can never go below zero.
	IncrementPostCount(ctx context.Context, id primitive.ObjectID, delta int) error
	// UpdatePhoto sets the photo URL and bumps the change counter in one
	// guarded atomic update; it fails with a quota error once the ceiling
	// has been reached.
	UpdatePhoto(ctx context.Context, id primitive.ObjectID, url string) error
}

type userRepository struct {
	users *mongo.Collection
}

// NewUserRepository returns a UserRepository backed by the given database.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{users: db.Collection(database.UsersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("insert", database.UsersCollection, time.Now())

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Email already registered")
		}
		return models.NewUpstreamError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("find", database.UsersCollection, time.Now())

	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("User", id.Hex())
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user has the email, so callers can
// distinguish "absent" from a store failure without unwrapping.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("find", database.UsersCollection, time.Now())

	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return &user, nil
}

func (r *userRepository) IncrementPostCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("update", database.UsersCollection, time.Now())

	filter := bson.M{"_id": id}
	if delta < 0 {
		// Guard keeps concurrent decrements from driving the counter negative.
		filter["postCount"] = bson.M{"$gt": 0}
	}
	res, err := r.users.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"postCount": delta}})
	if err != nil {
		return models.NewUpstreamError(err)
	}
	if res.MatchedCount == 0 && delta > 0 {
		return models.NewNotFoundError("User", id.Hex())
	}
	return nil
}

func (r *userRepository) UpdatePhoto(ctx context.Context, id primitive.ObjectID, url string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("update", database.UsersCollection, time.Now())

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id, "changePerMonth": bson.M{"$lt": models.MaxPhotoChanges}},
		bson.M{"$set": bson.M{"photo": url}, "$inc": bson.M{"changePerMonth": 1}},
	)
	if err != nil {
		return models.NewUpstreamError(err)
	}
	if res.MatchedCount == 0 {
		// Either the user is gone or the guard rejected the update.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return models.NewQuotaExceededError("Photo change limit reached")
	}
	return nil
}
