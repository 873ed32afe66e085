package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/court-booking/internal/model"
)

// mysqlDuplicateEntry is the MySQL server error number for a unique key
// violation (ER_DUP_ENTRY).
const mysqlDuplicateEntry = 1062

// BookingRepo persists bookings in the `bookings` table.  Dates are stored
// as CHAR(10) "YYYY-MM-DD" and clock times as CHAR(5) "HH:MM"; both are
// zero padded so lexical comparison in SQL matches chronological order.
//
// Writes that create bookings are serialized per (court, date) through a
// row in `court_day_locks`, which makes the overlap check and the insert
// a single atomic step even when many requests race for the same slot.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, court_id, user_id, booking_date, start_time, end_time, booking_type, notes, status, price, created_at`

// Insert stores a new booking if, and only if, no active booking on the
// same court and date overlaps [StartTime, EndTime).  The check and the
// insert run in one transaction holding the court/day lock row, so two
// concurrent inserts for an overlapping window cannot both succeed.  A
// rejected insert returns ErrConflict; the caller owns ID and CreatedAt.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := lockCourtDayTx(ctx, tx, b.CourtID, b.Date); err != nil {
		return err
	}
	taken, err := overlapExistsTx(ctx, tx, b.CourtID, b.Date, b.StartTime, b.EndTime)
	if err != nil {
		return err
	}
	if taken {
		return ErrConflict
	}
	if err := r.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CreateTx inserts a booking row within the scope of an existing
// transaction without any overlap check.  A duplicate primary key is
// reported as ErrConflict.  The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		b.ID, b.CourtID, b.UserID, b.Date, b.StartTime, b.EndTime,
		string(b.Type), b.Notes, string(b.Status), b.Price, b.CreatedAt,
	)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// lockCourtDayTx makes sure the lock row for (court, date) exists and then
// takes a row lock on it for the rest of the transaction.
func lockCourtDayTx(ctx context.Context, tx *sql.Tx, courtID, date string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO court_day_locks (court_id, booking_date) VALUES (?, ?)`,
		courtID, date,
	); err != nil {
		return err
	}
	var locked string
	return tx.QueryRowContext(ctx,
		`SELECT court_id FROM court_day_locks WHERE court_id = ? AND booking_date = ? FOR UPDATE`,
		courtID, date,
	).Scan(&locked)
}

// overlapExistsTx applies the half-open overlap predicate
// new_start < existing_end AND new_end > existing_start in SQL.
func overlapExistsTx(ctx context.Context, tx *sql.Tx, courtID, date, start, end string) (bool, error) {
	const q = `SELECT COUNT(*) FROM bookings
               WHERE court_id = ? AND booking_date = ? AND status = 'active'
                 AND start_time < ? AND end_time > ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, courtID, date, end, start).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Query returns the bookings matching the filter ordered by date and start
// time.  It never returns a nil slice on success.
func (r *BookingRepo) Query(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	where, args := bookingWhere(f)
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY booking_date, start_time`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves an active booking to status and returns the stored
// row.  Only active rows are updated, so of two concurrent cancels exactly
// one succeeds; the other gets ErrNotActive.  ErrNotFound is returned when
// no booking with the given id exists.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(model.StatusActive),
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotActive
	}
	return &b, nil
}

// PurgeDayLocksBefore deletes court/day lock rows for dates strictly before
// the given "YYYY-MM-DD" date and returns how many rows were removed.
// Lock rows are recreated on demand, so purging is always safe.
func (r *BookingRepo) PurgeDayLocksBefore(ctx context.Context, date string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM court_day_locks WHERE booking_date < ?`, date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func bookingWhere(f model.BookingFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if f.ID != "" {
		where = append(where, "id = ?")
		args = append(args, f.ID)
	}
	if f.CourtID != "" {
		where = append(where, "court_id = ?")
		args = append(args, f.CourtID)
	}
	if len(f.CourtIDs) > 0 {
		where = append(where, "court_id IN (?"+strings.Repeat(", ?", len(f.CourtIDs)-1)+")")
		for _, id := range f.CourtIDs {
			args = append(args, id)
		}
	}
	if f.Date != "" {
		where = append(where, "booking_date = ?")
		args = append(args, f.Date)
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.DateFrom != "" {
		where = append(where, "booking_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where = append(where, "booking_date <= ?")
		args = append(args, f.DateTo)
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var b model.Booking
	var typ, status string
	var createdAt time.Time
	err := s.Scan(
		&b.ID, &b.CourtID, &b.UserID, &b.Date, &b.StartTime, &b.EndTime,
		&typ, &b.Notes, &status, &b.Price, &createdAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	b.Type = model.BookingType(typ)
	b.Status = model.BookingStatus(status)
	b.CreatedAt = createdAt.UTC()
	return b, nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
