// Package seed provides helpers to create demo data for development and
// testing.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// seedPassword is the plaintext password every generated account gets, so
// demo logins work out of the box.
const seedPassword = "quillpass1"

// Factory builds domain entities with realistic fake content.
type Factory struct {
	rng *rand.Rand
}

// NewFactory creates a Factory with its own random source.
func NewFactory() *Factory {
	now := time.Now().UnixNano()
	gofakeit.Seed(now)
	return &Factory{rng: rand.New(rand.NewSource(now))}
}

// BuildUser constructs an account with a working bcrypt password hash.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	name := gofakeit.Name()
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Email:    fmt.Sprintf("%s%d@example.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), f.rng.Intn(10000)),
		Password: string(hashed),
		Photo:    models.DefaultAvatarURL,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildPost constructs a post for the given owner. The category rotates
// through the known defaults table so seeded data exercises the category
// images and summaries.
func (f *Factory) BuildPost(owner *models.User, overrides ...func(*models.Post)) *models.Post {
	def := models.CategoryDefaults[f.rng.Intn(len(models.CategoryDefaults))]

	// realistic date spread over the last 90 days
	back := time.Duration(f.rng.Intn(90*24)) * time.Hour
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		OwnerID:   owner.HexID(),
		Title:     gofakeit.Sentence(5),
		Content:   gofakeit.Paragraph(2, 4, 8, "\n\n"),
		Category:  def.Name,
		MainImage: def.Image,
		Summary:   def.Summary,
		ReadTime:  models.DefaultReadTime,
		Date:      time.Now().UTC().Add(-back),
		Likes:     0,
		WhoLiked:  []string{},
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// SprinkleLikes adds likes from the given users to the post, keeping the
// counter in step with the membership list.
func (f *Factory) SprinkleLikes(post *models.Post, users []*models.User) {
	for _, u := range users {
		if f.rng.Intn(3) == 0 {
			post.WhoLiked = append(post.WhoLiked, u.HexID())
			post.Likes++
		}
	}
}
