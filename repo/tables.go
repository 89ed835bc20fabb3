package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// Tables is the pgx-backed table repository.
type Tables struct {
	pool *pgxpool.Pool
}

func NewTables(pool *pgxpool.Pool) *Tables {
	return &Tables{pool: pool}
}

const tableColumns = `id, club_id, number, seats, active`

func scanTable(row pgx.Row) (model.Table, error) {
	var t model.Table
	err := row.Scan(&t.ID, &t.ClubID, &t.Number, &t.Seats, &t.Active)
	return t, err
}

// ListAvailable returns the club's active tables that still have at least one
// free slot on the given date. A table is fully booked once its live bookings
// for the date cover every window the club's opening hours allow.
func (r *Tables) ListAvailable(ctx context.Context, clubID int64, date time.Time) ([]model.Table, error) {
	const q = `
		SELECT t.id, t.club_id, t.number, t.seats, t.active
		FROM tables t
		JOIN clubs c ON c.id = t.club_id
		WHERE t.club_id = $1
		  AND t.active
		  AND (SELECT count(*) FROM bookings b
		       WHERE b.table_id = t.id
		         AND b.booking_date = $2
		         AND b.status <> 'cancelled')
		      < GREATEST((c.close_hour - c.open_hour) / $3, 1)
		ORDER BY t.number`

	rows, err := r.pool.Query(ctx, q, clubID, date, model.SlotHours)
	if err != nil {
		return nil, fmt.Errorf("list tables for club %d: %w", clubID, err)
	}
	defer rows.Close()

	var tables []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *Tables) Find(ctx context.Context, id int64) (*model.Table, error) {
	t, err := scanTable(r.pool.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find table %d: %w", id, err)
	}
	return &t, nil
}
