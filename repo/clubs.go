package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// Clubs is the pgx-backed venue repository.
type Clubs struct {
	pool *pgxpool.Pool
}

func NewClubs(pool *pgxpool.Pool) *Clubs {
	return &Clubs{pool: pool}
}

const clubColumns = `id, name, description, address, open_hour, close_hour, active`

func scanClub(row pgx.Row) (model.Club, error) {
	var c model.Club
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Address, &c.OpenHour, &c.CloseHour, &c.Active)
	return c, err
}

func (r *Clubs) ListActive(ctx context.Context) ([]model.Club, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []model.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("scan club: %w", err)
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

func (r *Clubs) Find(ctx context.Context, id int64) (*model.Club, error) {
	c, err := scanClub(r.pool.QueryRow(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find club %d: %w", id, err)
	}
	return &c, nil
}
