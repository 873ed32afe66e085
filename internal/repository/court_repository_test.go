package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourtRepoGetCourt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourtRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, club_id, name, bookable_from, bookable_to FROM courts WHERE id = ?`)).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "club_id", "name", "bookable_from", "bookable_to"}).
			AddRow("A1", "club-1", "Centre Court", "08:00", "21:00"))

	c, err := repo.GetCourt(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "club-1", c.ClubID)
	assert.Equal(t, "Centre Court", c.Name)
	assert.Equal(t, "08:00", c.BookableFrom)
	assert.Equal(t, "21:00", c.BookableTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourtRepoGetCourtUnknown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourtRepo(db)

	mock.ExpectQuery(`FROM courts WHERE id = \?`).
		WithArgs("Z9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetCourt(context.Background(), "Z9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourtRepoGetCourtPassesOtherErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourtRepo(db)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`FROM courts WHERE id = \?`).WillReturnError(boom)

	_, err := repo.GetCourt(context.Background(), "A1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCourtRepoCourtIDsByClub(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourtRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM courts WHERE club_id = ? ORDER BY id`)).
		WithArgs("club-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("A1").AddRow("A2"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM courts WHERE club_id = ? ORDER BY id`)).
		WithArgs("club-empty").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := repo.CourtIDsByClub(context.Background(), "club-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, ids)

	ids, err = repo.CourtIDsByClub(context.Background(), "club-empty")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
