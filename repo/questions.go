package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koteev-m/Booking-Bot-sub000/model"
)

// Questions is the pgx-backed question repository.
type Questions struct {
	pool *pgxpool.Pool
}

func NewQuestions(pool *pgxpool.Pool) *Questions {
	return &Questions{pool: pool}
}

func (r *Questions) Save(ctx context.Context, q *model.Question) error {
	const stmt = `
		INSERT INTO questions (user_id, chat_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, stmt, q.UserID, q.ChatID, q.Text).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}
