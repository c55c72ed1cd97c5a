package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/trailfeed/trailfeed-backend/internal/models"
)

type postgresCommentStore struct {
	db *sql.DB
}

const commentColumns = `id, created_at, user_id, experience_id, text`

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	err := row.Scan(&comment.ID, &comment.CreatedAt, &comment.UserID, &comment.ExperienceID, &comment.Text)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (s *postgresCommentStore) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, created_at, user_id, experience_id, text)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.CreatedAt, comment.UserID, comment.ExperienceID, comment.Text)
	return err
}

func (s *postgresCommentStore) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	return scanComment(row)
}

func (s *postgresCommentStore) ListByExperience(ctx context.Context, experienceID string) ([]*models.Comment, error) {
	if _, err := uuid.Parse(experienceID); err != nil {
		return []*models.Comment{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE experience_id = $1
		ORDER BY created_at DESC
	`, experienceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *postgresCommentStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
