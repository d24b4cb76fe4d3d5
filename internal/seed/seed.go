package seed

import (
	"context"
	"fmt"
	"log"

	"quill/internal/database"
	"quill/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with demo users and posts.
func Seed(ctx context.Context, db *mongo.Database, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(ctx, db); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	f := NewFactory()

	users := make([]*models.User, 0, opts.NumUsers)
	userDocs := make([]interface{}, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u := f.BuildUser()
		users = append(users, u)
		userDocs = append(userDocs, u)
	}

	postDocs := make([]interface{}, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		owner := users[i%len(users)]
		p := f.BuildPost(owner)
		f.SprinkleLikes(p, users)
		owner.PostCount++
		postDocs = append(postDocs, p)
	}

	// Users are inserted after the post loop so each document already
	// carries its final postCount.
	if len(userDocs) > 0 {
		if _, err := db.Collection(database.UsersCollection).InsertMany(ctx, userDocs); err != nil {
			return fmt.Errorf("inserting users: %w", err)
		}
	}
	if len(postDocs) > 0 {
		if _, err := db.Collection(database.PostsCollection).InsertMany(ctx, postDocs); err != nil {
			return fmt.Errorf("inserting posts: %w", err)
		}
	}

	log.Printf("Seeded %d users and %d posts. All accounts use password %q.",
		len(users), len(postDocs), seedPassword)
	return nil
}

func clearData(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{database.PostsCollection, database.UsersCollection} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}
