package server

import (
	"io"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	return c.JSON(currentUser(c).Info())
}

// GetUserByID handles GET /api/users/:id
func (s *Server) GetUserByID(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user.Info())
}

// ChangePhoto handles POST /api/users/change-photo. The photo arrives as a
// multipart form file under "photo"; the response is an envelope reporting
// success, a storage failure, or the quota being reached.
func (s *Server) ChangePhoto(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return respondError(c, models.NewValidationError("No file uploaded"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, models.NewValidationError("Unreadable upload"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	result, err := s.userService.ChangePhoto(c.Context(), service.ChangePhotoInput{
		User:     currentUser(c),
		Filename: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}
