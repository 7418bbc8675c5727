package store

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists messages into the chat schema's messages table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Persist(ctx context.Context, room int64, sender string, receiver *string, content string) (string, error) {
	var id int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO messages (room_id, sender_id, receiver_id, content, created_at)
		VALUES ($1, $2::bigint, $3::bigint, $4, NOW())
		RETURNING id
	`, room, sender, receiver, content).Scan(&id)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}
