package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cms-server/internal/access"
	"cms-server/internal/domain"
	"cms-server/internal/repository"
)

var tracer = otel.Tracer("cms-server/internal/service")

// Archiver keeps a copy of content that leaves circulation.
type Archiver interface {
	Snapshot(ctx context.Context, content *domain.Content, reason string) (string, error)
}

const (
	SnapshotArchived = "archived"
	SnapshotDeleted  = "deleted"
)

type CreateContentInput struct {
	Title  string
	Body   string
	Status domain.ContentStatus
}

// UpdateContentInput carries the fields to overwrite. Empty values are treated
// as not provided, so an update can never clear a field.
type UpdateContentInput struct {
	Title  string
	Body   string
	Status domain.ContentStatus
}

type ListContentInput struct {
	Status   domain.ContentStatus
	AuthorID int64
}

// ContentService coordinates content operations under the access policy.
type ContentService interface {
	Create(ctx context.Context, actor domain.Identity, in CreateContentInput) (*domain.Content, error)
	Get(ctx context.Context, id int64) (*domain.Content, error)
	Update(ctx context.Context, actor domain.Identity, id int64, in UpdateContentInput) (*domain.Content, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) error
	List(ctx context.Context, actor domain.Identity, in ListContentInput) ([]domain.Content, error)
}

type contentService struct {
	contents repository.ContentRepository
	archiver Archiver
	logger   logrus.FieldLogger
}

// NewContentService builds the service; archiver may be nil to disable snapshots.
func NewContentService(contents repository.ContentRepository, archiver Archiver, logger logrus.FieldLogger) ContentService {
	if logger == nil {
		logger = logrus.New()
	}
	return &contentService{
		contents: contents,
		archiver: archiver,
		logger:   logger,
	}
}

func (s *contentService) Create(ctx context.Context, actor domain.Identity, in CreateContentInput) (_ *domain.Content, err error) {
	ctx, span := startSpan(ctx, "ContentService.Create", actor)
	defer func() { endSpan(span, err) }()

	if err := access.Authenticated(actor).Err(); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.ContentStatusDraft
	}
	// the author is always the caller, whatever the request claimed
	content := &domain.Content{
		Title:    in.Title,
		Body:     in.Body,
		Status:   status,
		AuthorID: actor.UserID,
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.contents.Create(ctx, content); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("content.id", content.ID))
	return s.contents.Get(ctx, content.ID)
}

func (s *contentService) Get(ctx context.Context, id int64) (_ *domain.Content, err error) {
	ctx, span := startSpan(ctx, "ContentService.Get", domain.Anonymous)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("content.id", id))

	return s.contents.Get(ctx, id)
}

func (s *contentService) Update(ctx context.Context, actor domain.Identity, id int64, in UpdateContentInput) (_ *domain.Content, err error) {
	ctx, span := startSpan(ctx, "ContentService.Update", actor)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("content.id", id))

	if err := access.Authenticated(actor).Err(); err != nil {
		return nil, err
	}

	content, err := s.contents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanModifyContent(actor, content, access.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	previous := content.Status
	if in.Title != "" {
		content.Title = in.Title
	}
	if in.Body != "" {
		content.Body = in.Body
	}
	if in.Status != "" {
		content.Status = in.Status
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	if err := s.contents.Update(ctx, content); err != nil {
		return nil, err
	}
	if previous != domain.ContentStatusArchived && content.Status == domain.ContentStatusArchived {
		s.snapshot(ctx, content, SnapshotArchived)
	}
	return content, nil
}

func (s *contentService) Delete(ctx context.Context, actor domain.Identity, id int64) (err error) {
	ctx, span := startSpan(ctx, "ContentService.Delete", actor)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("content.id", id))

	if err := access.Authenticated(actor).Err(); err != nil {
		return err
	}

	content, err := s.contents.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanModifyContent(actor, content, access.ActionDelete).Err(); err != nil {
		return err
	}

	if err := s.contents.Delete(ctx, id); err != nil {
		return err
	}
	s.snapshot(ctx, content, SnapshotDeleted)
	return nil
}

func (s *contentService) List(ctx context.Context, actor domain.Identity, in ListContentInput) (_ []domain.Content, err error) {
	ctx, span := startSpan(ctx, "ContentService.List", actor)
	defer func() { endSpan(span, err) }()

	if in.Status != "" && !in.Status.Valid() {
		return nil, domain.ValidationErrors{}.Add("status", "status must be one of the following values: draft, published, archived")
	}

	filter := access.ListFilter(actor, in.Status, in.AuthorID)
	span.SetAttributes(attribute.Int("content.visibility", int(filter.Visibility)))

	contents, err := s.contents.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("content.count", len(contents)))
	return contents, nil
}

// snapshot is best effort: a failed archive write never fails the caller's request.
func (s *contentService) snapshot(ctx context.Context, content *domain.Content, reason string) {
	if s.archiver == nil {
		return
	}
	location, err := s.archiver.Snapshot(ctx, content, reason)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"content_id": content.ID,
			"reason":     reason,
		}).Warn("archive content snapshot")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"content_id": content.ID,
		"location":   location,
	}).Info("content snapshot archived")
}

func startSpan(ctx context.Context, name string, actor domain.Identity) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if actor.Authenticated() {
		span.SetAttributes(
			attribute.Int64("enduser.id", actor.UserID),
			attribute.String("enduser.role", string(actor.Role)),
		)
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
