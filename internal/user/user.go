package users

import (
	"time"
)

type ContextKey string

const UserKey ContextKey = "user"

// SuperUserID is the administrator seeded by the migrations.
const SuperUserID = "00000000-0000-0000-0000-000000000001"

// GuestUserID is the shared read-mostly account used by POST /auth/guest.
const GuestUserID = "00000000-0000-0000-0000-000000000002"

type User struct {
	ID             string    `db:"id" json:"id"`
	DisplayName    string    `db:"display_name" json:"displayName"`
	IsAdmin        bool      `db:"is_admin" json:"isAdmin"`
	Coins          int64     `db:"coins" json:"coins"`
	Wins           int       `db:"wins" json:"wins"`
	Participations int       `db:"participations" json:"participations"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Transaction is one ledger line. Positive amounts are credits.
type Transaction struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Amount    int64     `db:"amount" json:"amount"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
