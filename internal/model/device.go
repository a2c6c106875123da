package model

import "time"

type Device struct {
	ID           int64      `db:"id" json:"device_id"`
	OwnerID      int64      `db:"owner_id" json:"-"`
	MacAddress   string     `db:"mac_address" json:"mac_address"`
	SerialNumber string     `db:"serial_number" json:"serial_number"`
	TypeID       int        `db:"type_id" json:"type_id"`
	DisplayName  *string    `db:"display_name" json:"display_name,omitempty"`
	Battery      int        `db:"battery" json:"battery"`
	IsUnlocked   bool       `db:"is_unlocked" json:"is_unlocked"`
	LastStatusAt *time.Time `db:"last_status_at" json:"last_status_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type RegisterDeviceParams struct {
	OwnerID      int64
	MacAddress   string
	SerialNumber string
	TypeID       int
	DisplayName  *string
}

// StatusUpdate is a partial update; nil fields leave the stored value
// unchanged.
type StatusUpdate struct {
	Battery    *int
	IsUnlocked *bool
}
