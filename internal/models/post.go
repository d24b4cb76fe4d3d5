package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultReadTime is stamped on every post at creation. Read time is not
// computed from content length.
const DefaultReadTime = "1 min read"

// Post represents a user-authored article stored in the posts collection.
//
// Likes must always equal len(WhoLiked); both are mutated together in a
// single atomic update. WhoLiked preserves insertion order but behaves as a
// set: a user id appears at most once.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Category  string             `bson:"category" json:"category"`
	MainImage string             `bson:"mainImage,omitempty" json:"mainImage,omitempty"`
	Summary   string             `bson:"summary,omitempty" json:"summary,omitempty"`
	ReadTime  string             `bson:"readTime" json:"readTime"`
	Date      time.Time          `bson:"date" json:"date"`
	Likes     int                `bson:"likes" json:"likes"`
	WhoLiked  []string           `bson:"whoLiked" json:"whoLiked"`
}

// PostUpdate carries the replaceable fields for a post update. Updates are a
// wholesale replace of these five fields; likes, whoLiked, date and readTime
// are never touched by an update.
type PostUpdate struct {
	Title     string `bson:"title" json:"title"`
	Category  string `bson:"category" json:"category"`
	MainImage string `bson:"mainImage" json:"mainImage"`
	Content   string `bson:"content" json:"content"`
	Summary   string `bson:"summary" json:"summary"`
}

// PostView is the externally visible projection of a post, enriched with the
// owner's current display fields. Every read path returns this shape.
type PostView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	MainImage  string    `json:"mainImage,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	OwnerID    string    `json:"owner_id"`
	OwnerName  string    `json:"owner_name"`
	OwnerPhoto string    `json:"owner_photo"`
	ReadTime   string    `json:"readTime"`
	Date       time.Time `json:"date"`
	Likes      int       `json:"likes"`
	WhoLiked   []string  `json:"whoLiked"`
}
