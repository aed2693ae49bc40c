package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cms-server/internal/domain"
	"cms-server/internal/repository"
)

const selectContents = `
SELECT c.id, c.title, c.body, c.status, c.author_id, c.created_at, c.updated_at,
	u.id, u.email, u.role, u.created_at, u.updated_at
FROM contents c
JOIN users u ON u.id = c.author_id`

type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) repository.ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Create(ctx context.Context, content *domain.Content) (int64, error) {
	now := time.Now().UTC()
	content.CreatedAt = now
	content.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO contents (title, body, status, author_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		content.Title,
		content.Body,
		string(content.Status),
		content.AuthorID,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("content last insert id: %w", err)
	}
	content.ID = id
	return id, nil
}

func (r *ContentRepository) Get(ctx context.Context, id int64) (*domain.Content, error) {
	row := r.db.QueryRowContext(ctx, selectContents+`
WHERE c.id = ?`, id)
	return scanContent(row)
}

func (r *ContentRepository) Update(ctx context.Context, content *domain.Content) error {
	content.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE contents
SET title=?, body=?, status=?, updated_at=?
WHERE id=?`,
		content.Title,
		content.Body,
		string(content.Status),
		content.UpdatedAt,
		content.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return expectAffected(res, "Content")
}

func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return expectAffected(res, "Content")
}

func (r *ContentRepository) List(ctx context.Context, filter domain.ContentFilter) ([]domain.Content, error) {
	where, args := contentWhere(filter)
	query := selectContents
	if where != "" {
		query += "\nWHERE " + where
	}
	query += "\nORDER BY c.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	contents := []domain.Content{}
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, *content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contents: %w", err)
	}
	return contents, nil
}

// contentWhere renders the explicit filters ANDed with the visibility restriction.
func contentWhere(filter domain.ContentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "c.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.AuthorID > 0 {
		conds = append(conds, "c.author_id = ?")
		args = append(args, filter.AuthorID)
	}

	switch filter.Visibility {
	case domain.VisibilityPublished:
		conds = append(conds, "c.status = ?")
		args = append(args, string(domain.ContentStatusPublished))
	case domain.VisibilityPublishedOrOwn:
		conds = append(conds, "(c.status = ? OR c.author_id = ?)")
		args = append(args, string(domain.ContentStatusPublished), filter.ViewerID)
	}

	return strings.Join(conds, " AND "), args
}

func scanContent(row rowScanner) (*domain.Content, error) {
	var (
		content domain.Content
		author  domain.User
		status  string
		role    string
	)
	if err := row.Scan(
		&content.ID,
		&content.Title,
		&content.Body,
		&status,
		&content.AuthorID,
		&content.CreatedAt,
		&content.UpdatedAt,
		&author.ID,
		&author.Email,
		&role,
		&author.CreatedAt,
		&author.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Content")
		}
		return nil, fmt.Errorf("scan content: %w", err)
	}
	content.Status = domain.ContentStatus(status)
	author.Role = domain.Role(role)
	content.Author = &author
	return &content, nil
}
