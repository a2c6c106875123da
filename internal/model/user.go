package model

import "time"

// User rows are created by the identity service; this server only
// reads them to resolve usernames and roles.
type User struct {
	ID        int64     `db:"id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
