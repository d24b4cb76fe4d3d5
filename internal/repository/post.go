package repository

import (
	"context"
	"errors"
	"time"

	"quill/internal/cache"
	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// toggleAttempts bounds the retry loop when both conditional like updates
// miss because another request flipped the state in between.
const toggleAttempts = 3

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) error
	// Delete reports whether this call removed the post, so exactly one of
	// any concurrent deletes decrements the owner's counter.
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	// ToggleLike flips userID's membership in whoLiked and adjusts likes in
	// the same single-document update. It reports whether the post ended up
	// liked by the user.
	ToggleLike(ctx context.Context, id primitive.ObjectID, userID string) (bool, error)
}

type postRepository struct {
	posts *mongo.Collection
}

// NewPostRepository returns a PostRepository backed by the given database.
func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{posts: db.Collection(database.PostsCollection)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("insert", database.PostsCollection, time.Now())

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.WhoLiked == nil {
		post.WhoLiked = []string{}
	}
	if _, err := r.posts.InsertOne(opCtx, post); err != nil {
		return models.NewUpstreamError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("find", database.PostsCollection, time.Now())

	var post models.Post
	err := r.posts.FindOne(opCtx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("Post", id.Hex())
	}
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Post, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, limit, offset)
}

func (r *postRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]models.Post, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("find", database.PostsCollection, time.Now())

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.posts.Find(opCtx, filter, opts)
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	defer cursor.Close(opCtx)

	posts := []models.Post{}
	if err := cursor.All(opCtx, &posts); err != nil {
		return nil, models.NewUpstreamError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) error {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("update", database.PostsCollection, time.Now())

	res, err := r.posts.UpdateOne(opCtx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return models.NewUpstreamError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post", id.Hex())
	}
	cache.InvalidatePost(ctx, id.Hex())
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("delete", database.PostsCollection, time.Now())

	res, err := r.posts.DeleteOne(opCtx, bson.M{"_id": id})
	if err != nil {
		return false, models.NewUpstreamError(err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	cache.InvalidatePost(ctx, id.Hex())
	return true, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, id primitive.ObjectID, userID string) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer observability.ObserveStoreOp("update", database.PostsCollection, time.Now())

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		// Like: only matches while the user is absent from whoLiked, so the
		// membership change and counter increment land atomically together.
		res, err := r.posts.UpdateOne(opCtx,
			bson.M{"_id": id, "whoLiked": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"whoLiked": userID}, "$inc": bson.M{"likes": 1}},
		)
		if err != nil {
			return false, models.NewUpstreamError(err)
		}
		if res.ModifiedCount == 1 {
			cache.InvalidatePost(ctx, id.Hex())
			return true, nil
		}

		// Unlike: only matches while the user is present.
		res, err = r.posts.UpdateOne(opCtx,
			bson.M{"_id": id, "whoLiked": userID},
			bson.M{"$pull": bson.M{"whoLiked": userID}, "$inc": bson.M{"likes": -1}},
		)
		if err != nil {
			return false, models.NewUpstreamError(err)
		}
		if res.ModifiedCount == 1 {
			cache.InvalidatePost(ctx, id.Hex())
			return false, nil
		}

		// Both conditionals missed: either the post is gone, or a concurrent
		// toggle flipped the membership between the two updates. Retry after
		// confirming the post still exists.
		if _, err := r.GetByID(ctx, id); err != nil {
			return false, err
		}
	}

	return false, models.NewConflictError("Like state changed concurrently, retry")
}
