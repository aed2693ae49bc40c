package domain

import (
	"time"
	"unicode/utf8"
)

type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusPublished, ContentStatusArchived:
		return true
	}
	return false
}

const MaxTitleLength = 255

// Content is an article owned by exactly one author.
type Content struct {
	ID        int64
	Title     string
	Body      string
	Status    ContentStatus
	AuthorID  int64
	Author    *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the entity constraints enforced before every save.
func (c *Content) Validate() error {
	var errs ValidationErrors
	switch {
	case c.Title == "":
		errs = errs.Add("title", "title should not be empty")
	case utf8.RuneCountInString(c.Title) > MaxTitleLength:
		errs = errs.Add("title", "title must be shorter than or equal to 255 characters")
	}
	if c.Body == "" {
		errs = errs.Add("body", "body should not be empty")
	}
	if !c.Status.Valid() {
		errs = errs.Add("status", "status must be one of the following values: draft, published, archived")
	}
	if c.AuthorID <= 0 {
		errs = errs.Add("authorId", "authorId is required")
	}
	return errs.OrNil()
}

// Visibility restricts which content a list query may return.
type Visibility int

const (
	// VisibilityAll applies no restriction.
	VisibilityAll Visibility = iota
	// VisibilityPublished returns published content only.
	VisibilityPublished
	// VisibilityPublishedOrOwn returns published content plus everything authored by ViewerID.
	VisibilityPublishedOrOwn
)

// ContentFilter is the effective list query: optional equality filters ANDed with an access restriction.
type ContentFilter struct {
	Status     ContentStatus
	AuthorID   int64
	Visibility Visibility
	ViewerID   int64
}
