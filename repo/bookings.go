package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// uniqueViolation is the PostgreSQL error code raised by the partial unique
// index on (table_id, booking_date, slot_start).
const uniqueViolation = "23505"

// Bookings is the pgx-backed booking repository.
type Bookings struct {
	pool *pgxpool.Pool
}

func NewBookings(pool *pgxpool.Pool) *Bookings {
	return &Bookings{pool: pool}
}

const bookingColumns = `id, ref, user_id, club_id, table_id, booking_date,
	slot_start, slot_end, guests, guest_name, guest_phone, status, rating,
	feedback, created_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.Ref, &b.UserID, &b.ClubID, &b.TableID, &b.Date,
		&b.SlotStart, &b.SlotEnd, &b.Guests, &b.GuestName, &b.GuestPhone,
		&b.Status, &b.Rating, &b.Feedback, &b.CreatedAt)
	return b, err
}

// Create inserts the booking and fills in its id, reference and timestamp.
// A slot collision surfaces as model.ErrSlotTaken: the unique index is the
// authoritative guard, the earlier availability check is only a fast path.
func (r *Bookings) Create(ctx context.Context, b *model.Booking) error {
	const q = `
		INSERT INTO bookings (ref, user_id, club_id, table_id, booking_date,
		                      slot_start, slot_end, guests, guest_name,
		                      guest_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	b.Ref = uuid.NewString()
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}
	err := r.pool.QueryRow(ctx, q, b.Ref, b.UserID, b.ClubID, b.TableID,
		b.Date, b.SlotStart, b.SlotEnd, b.Guests, b.GuestName, b.GuestPhone,
		b.Status).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrSlotTaken
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *Bookings) Find(ctx context.Context, id int64) (*model.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking %d: %w", id, err)
	}
	return &b, nil
}

func (r *Bookings) ListUpcomingByUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND status <> 'cancelled' AND booking_date >= $2
		ORDER BY booking_date, slot_start`

	today := time.Now().UTC().Truncate(24 * time.Hour)
	rows, err := r.pool.Query(ctx, q, userID, today)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *Bookings) Cancel(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET status = 'cancelled' WHERE id = $1 AND status <> 'cancelled'`, id)
	if err != nil {
		return fmt.Errorf("cancel booking %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// AddFeedback stores a rating, a comment, or both. Zero rating and empty
// feedback each leave the stored value untouched.
func (r *Bookings) AddFeedback(ctx context.Context, id int64, rating int, feedback string) error {
	const q = `
		UPDATE bookings
		SET rating   = COALESCE(NULLIF($2, 0), rating),
		    feedback = COALESCE(NULLIF($3, ''), feedback)
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, id, rating, feedback)
	if err != nil {
		return fmt.Errorf("add feedback for booking %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *Bookings) Available(ctx context.Context, tableID int64, date time.Time, slotStart string) (bool, error) {
	const q = `
		SELECT NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE table_id = $1 AND booking_date = $2 AND slot_start = $3
			  AND status <> 'cancelled')`

	var free bool
	if err := r.pool.QueryRow(ctx, q, tableID, date, slotStart).Scan(&free); err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return free, nil
}
