package http

import (
	"time"

	"cms-server/internal/domain"
	"cms-server/internal/storage"
)

type UserResponse struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type ContentResponse struct {
	ID        int64                `json:"id"`
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	Status    domain.ContentStatus `json:"status"`
	AuthorID  int64                `json:"authorId"`
	Author    *UserResponse        `json:"author,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type ArchiveObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
	URL          string  `json:"url"`
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func contentToResponse(c domain.Content) ContentResponse {
	resp := ContentResponse{
		ID:        c.ID,
		Title:     c.Title,
		Body:      c.Body,
		Status:    c.Status,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Author != nil {
		author := userToResponse(*c.Author)
		resp.Author = &author
	}
	return resp
}

func archiveObjectToResponse(obj storage.ArchivedObject) ArchiveObjectResponse {
	resp := ArchiveObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
		URL:  obj.URL,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
