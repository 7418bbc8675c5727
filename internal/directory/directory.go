package directory

import "context"

// Directory is the authoritative source of room membership and admin
// status. The relay queries it at join time and before honoring an
// administrative removal; it never mutates it.
type Directory interface {
	IsMember(ctx context.Context, room int64, user string) (bool, error)
	IsAdmin(ctx context.Context, room int64, user string) (bool, error)
}
