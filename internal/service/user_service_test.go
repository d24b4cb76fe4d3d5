package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type uploaderStub struct {
	uploadFn func(ctx context.Context, content []byte, filename, folder string) (string, error)
}

func (u *uploaderStub) Upload(ctx context.Context, content []byte, filename, folder string) (string, error) {
	if u.uploadFn != nil {
		return u.uploadFn(ctx, content, filename, folder)
	}
	return "https://img.example.com/upload/v1/photo.jpg", nil
}

func newUserService(userRepo *userRepoStub, uploader *uploaderStub) *UserService {
	return NewUserService(userRepo, uploader, "profilePhoto", 10)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates an account with a hashed password and default photo", func(t *testing.T) {
		t.Parallel()
		var saved *models.User
		userRepo := noopUserRepo()
		userRepo.createFn = func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			saved = u
			return nil
		}

		svc := newUserService(userRepo, &uploaderStub{})
		user, err := svc.Register(context.Background(), RegisterInput{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "analytical1",
		})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, models.DefaultAvatarURL, user.Photo)
		assert.Equal(t, 0, user.PostCount)
		assert.NotEqual(t, "analytical1", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("analytical1")))
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: primitive.NewObjectID(), Email: email}, nil
		}
		created := false
		userRepo.createFn = func(_ context.Context, _ *models.User) error {
			created = true
			return nil
		}

		svc := newUserService(userRepo, &uploaderStub{})
		_, err := svc.Register(context.Background(), RegisterInput{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "analytical1",
		})

		assertErrorCode(t, err, models.CodeConflict)
		assert.False(t, created)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name string
			in   RegisterInput
		}{
			{"bad email", RegisterInput{Name: "Ada", Email: "nope", Password: "analytical1"}},
			{"weak password", RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "short"}},
			{"blank name", RegisterInput{Name: "   ", Email: "ada@example.com", Password: "analytical1"}},
		}
		svc := newUserService(noopUserRepo(), &uploaderStub{})
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				_, err := svc.Register(context.Background(), tc.in)
				assertValidationError(t, err)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	hashed, err := bcrypt.GenerateFromPassword([]byte("analytical1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "ada@example.com",
		Password: string(hashed),
		Photo:    "https://img.example.com/ada.jpg",
	}
	userRepo := noopUserRepo()
	userRepo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == stored.Email {
			return stored, nil
		}
		return nil, nil
	}
	svc := newUserService(userRepo, &uploaderStub{})

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		user, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "analytical1"})
		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "difference0"})
		assertErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "analytical1"})
		assertErrorCode(t, err, models.CodeUnauthorized)
	})
}

func TestGetUserByID(t *testing.T) {
	t.Parallel()

	svc := newUserService(noopUserRepo(), &uploaderStub{})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetUserByID(context.Background(), "zzz")
		assertValidationError(t, err)
	})

	t.Run("absent id", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetUserByID(context.Background(), primitive.NewObjectID().Hex())
		assertErrorCode(t, err, models.CodeNotFound)
	})
}

func TestChangePhoto(t *testing.T) {
	t.Parallel()

	t.Run("uploads, stores the thumbnail and reports success", func(t *testing.T) {
		t.Parallel()
		user := testOwner()
		user.ChangePerMonth = 4

		var storedURL string
		userRepo := noopUserRepo()
		userRepo.updatePhotoFn = func(_ context.Context, id primitive.ObjectID, url string) error {
			assert.Equal(t, user.ID, id)
			storedURL = url
			return nil
		}
		uploader := &uploaderStub{uploadFn: func(_ context.Context, _ []byte, _, folder string) (string, error) {
			assert.Equal(t, "profilePhoto", folder)
			return "https://img.example.com/upload/v99/new.png", nil
		}}

		svc := newUserService(userRepo, uploader)
		res, err := svc.ChangePhoto(context.Background(), ChangePhotoInput{
			User:     user,
			Filename: "new.png",
			Content:  pngBytes(t),
		})

		require.NoError(t, err)
		assert.Equal(t, PhotoChangeSuccess, res.Result)
		assert.True(t, res.Success)
		require.NotNil(t, res.Other)
		assert.Equal(t, "https://img.example.com/upload/w_100/v99/new.png", res.Other.Photo)
		assert.Equal(t, res.Other.Photo, storedURL)
	})

	t.Run("reports limit_reached at the ceiling without uploading", func(t *testing.T) {
		t.Parallel()
		user := testOwner()
		user.ChangePerMonth = models.MaxPhotoChanges

		uploaded := false
		uploader := &uploaderStub{uploadFn: func(_ context.Context, _ []byte, _, _ string) (string, error) {
			uploaded = true
			return "", nil
		}}

		svc := newUserService(noopUserRepo(), uploader)
		res, err := svc.ChangePhoto(context.Background(), ChangePhotoInput{
			User:     user,
			Filename: "new.png",
			Content:  pngBytes(t),
		})

		require.NoError(t, err)
		assert.Equal(t, PhotoChangeLimitReached, res.Result)
		assert.False(t, res.Success)
		assert.Nil(t, res.Other)
		assert.False(t, uploaded)
	})

	t.Run("reports limit_reached when the guarded update loses the race", func(t *testing.T) {
		t.Parallel()
		user := testOwner()
		user.ChangePerMonth = 4

		userRepo := noopUserRepo()
		userRepo.updatePhotoFn = func(_ context.Context, _ primitive.ObjectID, _ string) error {
			return models.NewQuotaExceededError("Photo change limit reached")
		}

		svc := newUserService(userRepo, &uploaderStub{})
		res, err := svc.ChangePhoto(context.Background(), ChangePhotoInput{
			User:     user,
			Filename: "new.png",
			Content:  pngBytes(t),
		})

		require.NoError(t, err)
		assert.Equal(t, PhotoChangeLimitReached, res.Result)
	})

	t.Run("upload failure degrades to an error envelope", func(t *testing.T) {
		t.Parallel()
		user := testOwner()

		updated := false
		userRepo := noopUserRepo()
		userRepo.updatePhotoFn = func(_ context.Context, _ primitive.ObjectID, _ string) error {
			updated = true
			return nil
		}
		uploader := &uploaderStub{uploadFn: func(_ context.Context, _ []byte, _, _ string) (string, error) {
			return "", errors.New("host unreachable")
		}}

		svc := newUserService(userRepo, uploader)
		res, err := svc.ChangePhoto(context.Background(), ChangePhotoInput{
			User:     user,
			Filename: "new.png",
			Content:  pngBytes(t),
		})

		require.NoError(t, err)
		assert.Equal(t, PhotoChangeError, res.Result)
		assert.False(t, res.Success)
		assert.False(t, updated)
	})

	t.Run("rejects bytes that are not an image", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), &uploaderStub{})
		_, err := svc.ChangePhoto(context.Background(), ChangePhotoInput{
			User:     testOwner(),
			Filename: "notes.txt",
			Content:  []byte("plain text"),
		})
		assertValidationError(t, err)
	})
}
