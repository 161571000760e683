package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"popreel/internal/models"
)

const videoColumns = `id, title, description, video_url, thumbnail_url, controls, height, width, quality, owner_id, created_at, updated_at`

func (s *Store) CreateVideo(ctx context.Context, v *models.Video) error {
	query := `INSERT INTO videos (` + videoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.Controls,
		v.Transformation.Height, v.Transformation.Width, v.Transformation.Quality,
		nullString(v.OwnerID), v.CreatedAt.UnixNano(), v.UpdatedAt.UnixNano(),
	)
	return err
}

func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

// ListVideos returns the feed, newest first.
func (s *Store) ListVideos(ctx context.Context, limit, offset int) ([]models.Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (*models.Video, error) {
	var (
		v                models.Video
		owner            sql.NullString
		created, updated int64
	)
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL, &v.Controls,
		&v.Transformation.Height, &v.Transformation.Width, &v.Transformation.Quality,
		&owner, &created, &updated)
	if err != nil {
		return nil, err
	}
	v.OwnerID = owner.String
	v.CreatedAt = time.Unix(0, created).UTC()
	v.UpdatedAt = time.Unix(0, updated).UTC()
	return &v, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
