package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// asUser installs middleware that plays the role of the auth chain.
func asUser(app *fiber.App, user *models.User) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("currentUser", user)
		return c.Next()
	})
}

func TestCreatePostHandler(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Name: "me", Email: "me@example.com"}

	tests := []struct {
		name           string
		owner          *models.User
		body           map[string]string
		mockSetup      func(postRepo *MockPostRepository, userRepo *MockUserRepository)
		expectedStatus int
	}{
		{
			name:  "Success",
			owner: owner,
			body: map[string]string{
				"title":    "First Post",
				"category": "Food",
				"content":  "Hello world",
			},
			mockSetup: func(postRepo *MockPostRepository, userRepo *MockUserRepository) {
				postRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Return(nil).Once()
				userRepo.On("IncrementPostCount", mock.Anything, owner.ID, 1).Return(nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing Fields",
			owner:          owner,
			body:           map[string]string{"title": "No content"},
			mockSetup:      func(_ *MockPostRepository, _ *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Quota Reached",
			owner:          &models.User{ID: primitive.NewObjectID(), PostCount: models.MaxPostsPerUser},
			body:           map[string]string{"title": "x", "category": "Food", "content": "y"},
			mockSetup:      func(_ *MockPostRepository, _ *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			userRepo := new(MockUserRepository)
			postRepo := new(MockPostRepository)
			s := newTestServer(userRepo, postRepo)
			asUser(app, tt.owner)
			app.Post("/posts", s.CreatePost)

			tt.mockSetup(postRepo, userRepo)
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/posts", tt.body))
			assert.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			postRepo.AssertExpectations(t)
			userRepo.AssertExpectations(t)
		})
	}
}

func TestGetPostsHandler(t *testing.T) {
	app := fiber.New()
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	s := newTestServer(userRepo, postRepo)
	app.Get("/posts", s.GetPosts)

	owner := &models.User{ID: primitive.NewObjectID(), Name: "Ada", Photo: "https://img.example.com/ada.jpg"}
	posts := []models.Post{
		{ID: primitive.NewObjectID(), OwnerID: owner.HexID(), Title: "Newest"},
		{ID: primitive.NewObjectID(), OwnerID: owner.HexID(), Title: "Older"},
	}
	// Non-default limit to bypass the cached first page
	postRepo.On("List", mock.Anything, 20, 0).Return(posts, nil).Once()
	userRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts?limit=20", nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var views []models.PostView
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.Len(t, views, 2)
	assert.Equal(t, "Ada", views[0].OwnerName)

	// The memoized owner lookup must have run once for the page
	userRepo.AssertExpectations(t)
	postRepo.AssertExpectations(t)
}

func TestGetPostHandler(t *testing.T) {
	tests := []struct {
		name           string
		param          string
		mockSetup      func(postRepo *MockPostRepository, userRepo *MockUserRepository) string
		expectedStatus int
	}{
		{
			name: "Success",
			mockSetup: func(postRepo *MockPostRepository, userRepo *MockUserRepository) string {
				id := primitive.NewObjectID()
				ownerID := primitive.NewObjectID()
				postRepo.On("GetByID", mock.Anything, id).
					Return(&models.Post{ID: id, OwnerID: ownerID.Hex(), Title: "Hi"}, nil).Once()
				userRepo.On("GetByID", mock.Anything, ownerID).
					Return(nil, models.NewNotFoundError("User", ownerID.Hex())).Once()
				return id.Hex()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "Invalid ID",
			param: "abc",
			mockSetup: func(_ *MockPostRepository, _ *MockUserRepository) string {
				return "abc"
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Not Found",
			mockSetup: func(postRepo *MockPostRepository, _ *MockUserRepository) string {
				id := primitive.NewObjectID()
				postRepo.On("GetByID", mock.Anything, id).
					Return(nil, models.NewNotFoundError("Post", id.Hex())).Once()
				return id.Hex()
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			userRepo := new(MockUserRepository)
			postRepo := new(MockPostRepository)
			s := newTestServer(userRepo, postRepo)
			app.Get("/posts/:id", s.GetPost)

			param := tt.mockSetup(postRepo, userRepo)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/"+param, nil))
			assert.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestUpdatePostHandler(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID()}
	postID := primitive.NewObjectID()

	t.Run("owner updates", func(t *testing.T) {
		app := fiber.New()
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s := newTestServer(userRepo, postRepo)
		asUser(app, owner)
		app.Put("/posts/:id", s.UpdatePost)

		postRepo.On("GetByID", mock.Anything, postID).
			Return(&models.Post{ID: postID, OwnerID: owner.HexID()}, nil).Once()
		postRepo.On("Update", mock.Anything, postID, mock.AnythingOfType("models.PostUpdate")).Return(nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/posts/"+postID.Hex(), map[string]string{
			"title": "Edited", "category": "Food", "content": "new body",
		}))
		assert.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		postRepo.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		app := fiber.New()
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s := newTestServer(userRepo, postRepo)
		asUser(app, &models.User{ID: primitive.NewObjectID()})
		app.Put("/posts/:id", s.UpdatePost)

		postRepo.On("GetByID", mock.Anything, postID).
			Return(&models.Post{ID: postID, OwnerID: owner.HexID()}, nil).Once()

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/posts/"+postID.Hex(), map[string]string{
			"title": "Hijack", "category": "Food", "content": "x",
		}))
		assert.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeletePostHandler(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID()}
	postID := primitive.NewObjectID()

	app := fiber.New()
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	s := newTestServer(userRepo, postRepo)
	asUser(app, owner)
	app.Delete("/posts/:id", s.DeletePost)

	postRepo.On("GetByID", mock.Anything, postID).
		Return(&models.Post{ID: postID, OwnerID: owner.HexID()}, nil).Once()
	postRepo.On("Delete", mock.Anything, postID).Return(true, nil).Once()
	userRepo.On("IncrementPostCount", mock.Anything, owner.ID, -1).Return(nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+postID.Hex(), nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Post deleted successfully", body["message"])
	postRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestToggleLikeHandler(t *testing.T) {
	reader := &models.User{ID: primitive.NewObjectID()}
	postID := primitive.NewObjectID()

	app := fiber.New()
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	s := newTestServer(userRepo, postRepo)
	asUser(app, reader)
	app.Post("/posts/:id/like", s.ToggleLike)

	postRepo.On("ToggleLike", mock.Anything, postID, reader.HexID()).Return(true, nil).Once()
	postRepo.On("GetByID", mock.Anything, postID).
		Return(&models.Post{ID: postID, Likes: 1, WhoLiked: []string{reader.HexID()}}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/posts/"+postID.Hex()+"/like", nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Post liked successfully", body["message"])
	assert.Equal(t, float64(1), body["likes"])
	assert.Equal(t, true, body["userLiked"])
	postRepo.AssertExpectations(t)
}
