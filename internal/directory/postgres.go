package directory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres answers membership queries from the chat schema: membership
// from room_members, admin status from the global users.role column.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) IsMember(ctx context.Context, room int64, user string) (bool, error) {
	var ok bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM room_members
			WHERE room_id = $1 AND user_id::text = $2
		)
	`, room, user).Scan(&ok)
	return ok, err
}

func (p *Postgres) IsAdmin(ctx context.Context, _ int64, user string) (bool, error) {
	var ok bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE id::text = $1 AND role = 'admin'
		)
	`, user).Scan(&ok)
	return ok, err
}
