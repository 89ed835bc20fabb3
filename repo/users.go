package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// Users is the pgx-backed user repository.
type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// GetOrCreate upserts the user by Telegram id. The display name is refreshed
// on every call; the stored language wins over the transport hint once set.
func (r *Users) GetOrCreate(ctx context.Context, tgID int64, name, lang string) (*model.User, error) {
	const q = `
		INSERT INTO users (telegram_id, name, language)
		VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'en'))
		ON CONFLICT (telegram_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, telegram_id, name, language, loyalty_points, created_at`

	var u model.User
	err := r.pool.QueryRow(ctx, q, tgID, name, lang).Scan(
		&u.ID, &u.TelegramID, &u.Name, &u.Language, &u.LoyaltyPoints, &u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", tgID, err)
	}
	return &u, nil
}

func (r *Users) UpdateLanguage(ctx context.Context, userID int64, lang string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET language = $2 WHERE id = $1`, userID, lang)
	if err != nil {
		return fmt.Errorf("update language for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *Users) AddLoyaltyPoints(ctx context.Context, userID int64, points int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET loyalty_points = loyalty_points + $2 WHERE id = $1`, userID, points)
	if err != nil {
		return fmt.Errorf("add loyalty points for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
