package server

import (
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		MainImage string `json:"mainImage"`
		Content   string `json:"content"`
		Summary   string `json:"summary"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBodyError())
	}

	view, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Owner:     currentUser(c),
		Title:     req.Title,
		Category:  req.Category,
		MainImage: req.MainImage,
		Content:   req.Content,
		Summary:   req.Summary,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultPageSize)

	views, err := s.postService.ListPosts(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// GetMyPosts handles GET /api/posts/mine
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultPageSize)

	views, err := s.postService.ListOwnPosts(c.Context(), currentUser(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	view, err := s.postService.GetPost(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		MainImage string `json:"mainImage"`
		Content   string `json:"content"`
		Summary   string `json:"summary"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, invalidBodyError())
	}

	err := s.postService.UpdatePost(c.Context(), currentUser(c), c.Params("id"), service.UpdatePostInput{
		Title:     req.Title,
		Category:  req.Category,
		MainImage: req.MainImage,
		Content:   req.Content,
		Summary:   req.Summary,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post updated successfully"})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.Context(), currentUser(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	result, err := s.postService.ToggleLike(c.Context(), currentUser(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
