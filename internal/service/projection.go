package service

import "quill/internal/models"

// UnknownOwnerName is shown when a post's owner cannot be resolved, e.g. the
// account was removed out-of-band. Reads must still succeed.
const UnknownOwnerName = "Unknown User"

// ProjectPost merges a post with its owner's current display fields into the
// externally visible view. owner may be nil.
func ProjectPost(p *models.Post, owner *models.User) models.PostView {
	name := UnknownOwnerName
	photo := models.DefaultAvatarURL
	if owner != nil {
		if owner.Name != "" {
			name = owner.Name
		}
		if owner.Photo != "" {
			photo = owner.Photo
		}
	}

	whoLiked := p.WhoLiked
	if whoLiked == nil {
		whoLiked = []string{}
	}

	return models.PostView{
		ID:         p.ID.Hex(),
		Title:      p.Title,
		Content:    p.Content,
		Category:   p.Category,
		MainImage:  p.MainImage,
		Summary:    p.Summary,
		OwnerID:    p.OwnerID,
		OwnerName:  name,
		OwnerPhoto: photo,
		ReadTime:   p.ReadTime,
		Date:       p.Date,
		Likes:      p.Likes,
		WhoLiked:   whoLiked,
	}
}
