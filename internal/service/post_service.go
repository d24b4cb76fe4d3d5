package service

import (
	"context"
	"strings"
	"time"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
)

const (
	// DefaultPageSize is used when a listing request omits the limit.
	DefaultPageSize = 10
	// MaxPageSize is the documented listing cap; larger requests are clamped.
	MaxPageSize = 100
)

// PostService implements the post lifecycle: create, list, get, update,
// delete and like toggling, composed from the ownership/quota policy, the
// category defaults table, and the projection builder.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	Owner     *models.User
	Title     string
	Category  string
	MainImage string
	Content   string
	Summary   string
}

type UpdatePostInput struct {
	Title     string
	Category  string
	MainImage string
	Content   string
	Summary   string
}

// ToggleLikeResult reports the post's like state after a toggle.
type ToggleLikeResult struct {
	Message   string   `json:"message"`
	Likes     int      `json:"likes"`
	WhoLiked  []string `json:"whoLiked"`
	UserLiked bool     `json:"userLiked"`
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// normalizeNbsp replaces the literal "&nbsp;" sequence with a single space.
// Editors paste these into title and content; nothing else is rewritten.
func normalizeNbsp(s string) string {
	return strings.ReplaceAll(s, "&nbsp;", " ")
}

// clampPagination applies the documented listing bounds.
func clampPagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	if in.Title == "" || in.Category == "" || in.Content == "" {
		return nil, models.NewValidationError("Title, category and content are required")
	}

	if err := CanCreatePost(in.Owner); err != nil {
		return nil, err
	}

	post := &models.Post{
		OwnerID:   in.Owner.HexID(),
		Title:     normalizeNbsp(in.Title),
		Content:   normalizeNbsp(in.Content),
		Category:  in.Category,
		MainImage: in.MainImage,
		Summary:   in.Summary,
		ReadTime:  models.DefaultReadTime,
		Date:      time.Now().UTC(),
		Likes:     0,
		WhoLiked:  []string{},
	}

	// Resolve mainImage/summary from the category table only when the caller
	// supplied none; a miss leaves the field unset.
	if d, ok := models.LookupCategoryDefault(post.Category); ok {
		if post.MainImage == "" {
			post.MainImage = d.Image
		}
		if post.Summary == "" {
			post.Summary = d.Summary
		}
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.userRepo.IncrementPostCount(ctx, in.Owner.ID, 1); err != nil {
		return nil, err
	}

	view := ProjectPost(post, in.Owner)
	return &view, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]models.PostView, error) {
	limit, offset = clampPagination(limit, offset)

	// The default first page is by far the hottest read; serve it through
	// the cache and let every post write invalidate it.
	if offset == 0 && limit == DefaultPageSize {
		var views []models.PostView
		err := cache.Aside(ctx, cache.PostsListKey(), &views, cache.ListTTL, func() error {
			var fetchErr error
			views, fetchErr = s.listProjected(ctx, "", limit, offset)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return views, nil
	}

	return s.listProjected(ctx, "", limit, offset)
}

// ListOwnPosts lists the owner's posts newest-first. The owner is already
// loaded, so the projection joins against it directly.
func (s *PostService) ListOwnPosts(ctx context.Context, owner *models.User, limit, offset int) ([]models.PostView, error) {
	limit, offset = clampPagination(limit, offset)

	posts, err := s.postRepo.ListByOwner(ctx, owner.HexID(), limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, ProjectPost(&posts[i], owner))
	}
	return views, nil
}

func (s *PostService) listProjected(ctx context.Context, ownerID string, limit, offset int) ([]models.PostView, error) {
	var posts []models.Post
	var err error
	if ownerID == "" {
		posts, err = s.postRepo.List(ctx, limit, offset)
	} else {
		posts, err = s.postRepo.ListByOwner(ctx, ownerID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	// Owners repeat across a page; resolve each one once.
	owners := map[string]*models.User{}
	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, ProjectPost(&posts[i], s.resolveOwner(ctx, owners, posts[i].OwnerID)))
	}
	return views, nil
}

// resolveOwner loads a post owner by hex id, memoizing per request. Any
// failure degrades to a nil owner so reads never break on a missing account.
func (s *PostService) resolveOwner(ctx context.Context, memo map[string]*models.User, ownerID string) *models.User {
	if owner, ok := memo[ownerID]; ok {
		return owner
	}
	var owner *models.User
	if id, err := repository.ParseID(ownerID); err == nil {
		if u, err := s.userRepo.GetByID(ctx, id); err == nil {
			owner = u
		}
	}
	memo[ownerID] = owner
	return owner
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.PostView, error) {
	id, err := repository.ParseID(postID)
	if err != nil {
		return nil, err
	}

	var view models.PostView
	cacheErr := cache.Aside(ctx, cache.PostKey(postID), &view, cache.PostTTL, func() error {
		post, err := s.postRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		owners := map[string]*models.User{}
		view = ProjectPost(post, s.resolveOwner(ctx, owners, post.OwnerID))
		return nil
	})
	if cacheErr != nil {
		return nil, cacheErr
	}
	return &view, nil
}

func (s *PostService) UpdatePost(ctx context.Context, actor *models.User, postID string, in UpdatePostInput) error {
	if in.Title == "" || in.Category == "" || in.Content == "" {
		return models.NewValidationError("Title, category and content are required")
	}

	id, err := repository.ParseID(postID)
	if err != nil {
		return err
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := CanModifyPost(post, actor.HexID()); err != nil {
		return err
	}

	// Wholesale replace of the writable fields; counters and timestamps are
	// never touched here.
	return s.postRepo.Update(ctx, id, models.PostUpdate{
		Title:     normalizeNbsp(in.Title),
		Category:  in.Category,
		MainImage: in.MainImage,
		Content:   normalizeNbsp(in.Content),
		Summary:   in.Summary,
	})
}

func (s *PostService) DeletePost(ctx context.Context, actor *models.User, postID string) error {
	id, err := repository.ParseID(postID)
	if err != nil {
		return err
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := CanModifyPost(post, actor.HexID()); err != nil {
		return err
	}

	deleted, err := s.postRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		// A concurrent delete got there first; it owns the decrement.
		return models.NewNotFoundError("Post", postID)
	}

	ownerID, err := repository.ParseID(post.OwnerID)
	if err != nil {
		return err
	}
	return s.userRepo.IncrementPostCount(ctx, ownerID, -1)
}

func (s *PostService) ToggleLike(ctx context.Context, actor *models.User, postID string) (*ToggleLikeResult, error) {
	id, err := repository.ParseID(postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.postRepo.ToggleLike(ctx, id, actor.HexID())
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	message := "Post liked successfully"
	action := "like"
	if !liked {
		message = "Post unliked successfully"
		action = "unlike"
	}
	observability.LikeToggles.WithLabelValues(action).Inc()

	whoLiked := post.WhoLiked
	if whoLiked == nil {
		whoLiked = []string{}
	}

	return &ToggleLikeResult{
		Message:   message,
		Likes:     post.Likes,
		WhoLiked:  whoLiked,
		UserLiked: liked,
	}, nil
}
