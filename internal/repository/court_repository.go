package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/court-booking/internal/model"
)

// CourtRepo reads court configuration.  Courts are managed elsewhere; the
// booking engine only consults their bookable window and club membership.
type CourtRepo struct {
	db *sql.DB
}

// NewCourtRepo returns a CourtRepo bound to the given database.
func NewCourtRepo(db *sql.DB) *CourtRepo { return &CourtRepo{db: db} }

// GetCourt loads a court by id.  ErrNotFound is returned for unknown ids.
func (r *CourtRepo) GetCourt(ctx context.Context, id string) (*model.Court, error) {
	const q = `SELECT id, club_id, name, bookable_from, bookable_to FROM courts WHERE id = ?`
	var c model.Court
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.ClubID, &c.Name, &c.BookableFrom, &c.BookableTo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CourtIDsByClub lists the ids of all courts owned by a club, ordered by id.
func (r *CourtRepo) CourtIDsByClub(ctx context.Context, clubID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM courts WHERE club_id = ? ORDER BY id`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
