package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultAvatarURL is assigned to accounts registered without a photo.
const DefaultAvatarURL = "https://res.cloudinary.com/dlovcfdar/image/upload/w_100/v1752399063/p3img_r9qqsr.jpg"

const (
	// MaxPostsPerUser caps how many posts an account may hold at once.
	MaxPostsPerUser = 50
	// MaxPhotoChanges caps profile photo changes per account.
	MaxPhotoChanges = 5
)

// User is the stored account document. Password holds the bcrypt hash and is
// never serialized; ChangePerMonth counts consumed photo changes.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	Photo          string             `bson:"photo" json:"photo"`
	PostCount      int                `bson:"postCount" json:"postCount"`
	ChangePerMonth int                `bson:"changePerMonth" json:"-"`
}

// HexID returns the account id in the hex form used for post ownership and
// like membership.
func (u *User) HexID() string {
	return u.ID.Hex()
}

// Profile is the public account shape returned by registration and the photo
// change envelope.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.HexID(), Email: u.Email, Photo: u.Photo}
}

// UserInfo is the account shape returned by profile reads.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

func (u *User) Info() UserInfo {
	return UserInfo{ID: u.HexID(), Name: u.Name, Email: u.Email, Photo: u.Photo}
}
