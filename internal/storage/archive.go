package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cms-server/internal/domain"
)

// ContentArchive writes JSON snapshots of content under
// <prefix>/<content id>/<unix nanos>-<reason>.json.
type ContentArchive struct {
	svc    Service
	bucket string
	prefix string
	now    func() time.Time
}

func NewContentArchive(svc Service, bucket, prefix string) *ContentArchive {
	return &ContentArchive{
		svc:    svc,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

type snapshotAuthor struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type snapshotDocument struct {
	ID         int64                `json:"id"`
	Title      string               `json:"title"`
	Body       string               `json:"body"`
	Status     domain.ContentStatus `json:"status"`
	AuthorID   int64                `json:"authorId"`
	Author     *snapshotAuthor      `json:"author,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
	Reason     string               `json:"reason"`
	ArchivedAt time.Time            `json:"archivedAt"`
}

// Snapshot stores content and returns the object location.
func (a *ContentArchive) Snapshot(ctx context.Context, content *domain.Content, reason string) (string, error) {
	at := a.now().UTC()
	doc := snapshotDocument{
		ID:         content.ID,
		Title:      content.Title,
		Body:       content.Body,
		Status:     content.Status,
		AuthorID:   content.AuthorID,
		CreatedAt:  content.CreatedAt,
		UpdatedAt:  content.UpdatedAt,
		Reason:     reason,
		ArchivedAt: at,
	}
	if content.Author != nil {
		doc.Author = &snapshotAuthor{ID: content.Author.ID, Email: content.Author.Email, Role: content.Author.Role}
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return a.svc.PutObject(ctx, a.bucket, a.Key(content.ID, reason, at), bytes.NewReader(payload), "application/json")
}

// Key is the object key for a snapshot of content id taken at.
func (a *ContentArchive) Key(id int64, reason string, at time.Time) string {
	name := fmt.Sprintf("%d/%d-%s.json", id, at.UnixNano(), reason)
	if a.prefix == "" {
		return name
	}
	return a.prefix + "/" + name
}

// ArchivedObject is a listed snapshot with a temporary download link.
type ArchivedObject struct {
	ObjectInfo
	URL string
}

// List returns snapshots under prefix, relative to the archive root, each with a presigned URL.
func (a *ContentArchive) List(ctx context.Context, prefix string, expires time.Duration) ([]ArchivedObject, error) {
	full := a.prefix
	if p := strings.Trim(prefix, "/"); p != "" {
		if full != "" {
			full += "/"
		}
		full += p
	}

	objects, err := a.svc.ListObjects(ctx, a.bucket, full)
	if err != nil {
		return nil, err
	}
	out := make([]ArchivedObject, 0, len(objects))
	for _, obj := range objects {
		url, err := a.svc.GetObjectURL(ctx, a.bucket, obj.Key, expires)
		if err != nil {
			return nil, err
		}
		out = append(out, ArchivedObject{ObjectInfo: obj, URL: url})
	}
	return out, nil
}
