package service

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userRepoStub is a function-field stub for repository.UserRepository.
type userRepoStub struct {
	createFn             func(ctx context.Context, user *models.User) error
	getByIDFn            func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	getByEmailFn         func(ctx context.Context, email string) (*models.User, error)
	incrementPostCountFn func(ctx context.Context, id primitive.ObjectID, delta int) error
	updatePhotoFn        func(ctx context.Context, id primitive.ObjectID, url string) error
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{}
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id.Hex())
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (s *userRepoStub) IncrementPostCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	if s.incrementPostCountFn != nil {
		return s.incrementPostCountFn(ctx, id, delta)
	}
	return nil
}

func (s *userRepoStub) UpdatePhoto(ctx context.Context, id primitive.ObjectID, url string) error {
	if s.updatePhotoFn != nil {
		return s.updatePhotoFn(ctx, id, url)
	}
	return nil
}

// postRepoStub is a function-field stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(ctx context.Context, post *models.Post) error
	getByIDFn     func(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	listFn        func(ctx context.Context, limit, offset int) ([]models.Post, error)
	listByOwnerFn func(ctx context.Context, ownerID string, limit, offset int) ([]models.Post, error)
	updateFn      func(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) error
	deleteFn      func(ctx context.Context, id primitive.ObjectID) (bool, error)
	toggleLikeFn  func(ctx context.Context, id primitive.ObjectID, userID string) (bool, error)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{}
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	return nil
}

func (s *postRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Post", id.Hex())
}

func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return []models.Post{}, nil
}

func (s *postRepoStub) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Post, error) {
	if s.listByOwnerFn != nil {
		return s.listByOwnerFn(ctx, ownerID, limit, offset)
	}
	return []models.Post{}, nil
}

func (s *postRepoStub) Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, update)
	}
	return nil
}

func (s *postRepoStub) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return true, nil
}

func (s *postRepoStub) ToggleLike(ctx context.Context, id primitive.ObjectID, userID string) (bool, error) {
	if s.toggleLikeFn != nil {
		return s.toggleLikeFn(ctx, id, userID)
	}
	return false, nil
}

// memPostRepo keeps posts in memory and implements the like-toggle and
// delete contracts faithfully, for tests that exercise state transitions.
type memPostRepo struct {
	posts map[primitive.ObjectID]*models.Post
}

func newMemPostRepo(posts ...*models.Post) *memPostRepo {
	m := &memPostRepo{posts: map[primitive.ObjectID]*models.Post{}}
	for _, p := range posts {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		m.posts[p.ID] = p
	}
	return m
}

func (m *memPostRepo) Create(_ context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	m.posts[post.ID] = post
	return nil
}

func (m *memPostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id.Hex())
	}
	copied := *p
	copied.WhoLiked = append([]string(nil), p.WhoLiked...)
	return &copied, nil
}

func (m *memPostRepo) List(_ context.Context, limit, offset int) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range m.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memPostRepo) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range m.posts {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPostRepo) Update(_ context.Context, id primitive.ObjectID, update models.PostUpdate) error {
	p, ok := m.posts[id]
	if !ok {
		return models.NewNotFoundError("Post", id.Hex())
	}
	p.Title = update.Title
	p.Category = update.Category
	p.MainImage = update.MainImage
	p.Content = update.Content
	p.Summary = update.Summary
	return nil
}

func (m *memPostRepo) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	if _, ok := m.posts[id]; !ok {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

func (m *memPostRepo) ToggleLike(_ context.Context, id primitive.ObjectID, userID string) (bool, error) {
	p, ok := m.posts[id]
	if !ok {
		return false, models.NewNotFoundError("Post", id.Hex())
	}
	for i, uid := range p.WhoLiked {
		if uid == userID {
			p.WhoLiked = append(p.WhoLiked[:i], p.WhoLiked[i+1:]...)
			p.Likes--
			return false, nil
		}
	}
	p.WhoLiked = append(p.WhoLiked, userID)
	p.Likes++
	return true, nil
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	assert.ErrorAs(t, err, &appErr)
	if appErr != nil {
		assert.Equal(t, models.CodeValidation, appErr.Code)
	}
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	assert.ErrorAs(t, err, &appErr)
	if appErr != nil {
		assert.Equal(t, code, appErr.Code)
	}
}
