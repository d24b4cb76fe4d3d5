// Package service implements the application's business logic.
package service

import (
	"fmt"

	"quill/internal/models"
)

// CanCreatePost reports whether the user may create another post. It is a
// pure predicate over the already-loaded user; the repository increment is
// still guarded independently.
func CanCreatePost(u *models.User) error {
	if u.PostCount >= models.MaxPostsPerUser {
		return models.NewQuotaExceededError(
			fmt.Sprintf("Post limit reached. You can only create up to %d posts.", models.MaxPostsPerUser))
	}
	return nil
}

// CanModifyPost reports whether userID may update or delete the post. Only
// the owner may; liking is a separate, narrower right not gated here.
func CanModifyPost(p *models.Post, userID string) error {
	if p.OwnerID != userID {
		return models.NewForbiddenError("You are not the owner of this post")
	}
	return nil
}
