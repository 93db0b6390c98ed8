package postgres

import (
	"context"
	"database/sql"
	"errors"

	"forumregistrations/internal/domain"
)

type forumRepository struct {
	DB *sql.DB
}

func NewForumRepository(db *sql.DB) domain.ForumRepository {
	return &forumRepository{
		DB: db,
	}
}

func (r *forumRepository) GetByID(ctx context.Context, id string) (*domain.Forum, error) {
	query := `
		SELECT id, name, brand, date, city, venue, synced_at
		FROM forums
		WHERE id = $1
	`
	f := &domain.Forum{}
	var dateNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.Brand, &dateNull, &f.City, &f.Venue, &f.SyncedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if dateNull.Valid {
		f.Date = &dateNull.Time
	}
	return f, nil
}

func (r *forumRepository) Upsert(ctx context.Context, f *domain.Forum) error {
	query := `
		INSERT INTO forums (id, name, brand, date, city, venue, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			date = EXCLUDED.date,
			city = EXCLUDED.city,
			venue = EXCLUDED.venue,
			synced_at = EXCLUDED.synced_at
	`
	var date sql.NullTime
	if f.Date != nil {
		date = sql.NullTime{Time: *f.Date, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, f.ID, f.Name, f.Brand, date, f.City, f.Venue, f.SyncedAt)
	return err
}

// forumSourceRepository reads forums from the external forums database.
type forumSourceRepository struct {
	DB *sql.DB
}

// NewForumSourceRepository returns a ForumSource backed by the external forums database.
func NewForumSourceRepository(db *sql.DB) domain.ForumSource {
	return &forumSourceRepository{
		DB: db,
	}
}

func (r *forumSourceRepository) GetForum(ctx context.Context, id string) (*domain.Forum, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(brand, ''), date, COALESCE(city, ''), COALESCE(venue, '')
		FROM forums
		WHERE id = $1
	`
	f := &domain.Forum{}
	var dateNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.Brand, &dateNull, &f.City, &f.Venue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if dateNull.Valid {
		f.Date = &dateNull.Time
	}
	return f, nil
}
