package model

import "time"

// Pairing links one wearer's device to at most one keyholder. The
// secret is generated once at code creation and never rotated; a
// re-pair after revocation is a new Pairing with a new secret.
type Pairing struct {
	ID            int64         `db:"id" json:"id"`
	WearerID      int64         `db:"wearer_id" json:"wearer_id"`
	KeyholderID   *int64        `db:"keyholder_id" json:"keyholder_id,omitempty"`
	DeviceID      int64         `db:"device_id" json:"device_id"`
	Secret        string        `db:"secret" json:"-"`
	Code          *string       `db:"code" json:"-"`
	Status        PairingStatus `db:"status" json:"status"`
	CodeExpiresAt time.Time     `db:"code_expires_at" json:"-"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	AcceptedAt    *time.Time    `db:"accepted_at" json:"accepted_at,omitempty"`
	RevokedAt     *time.Time    `db:"revoked_at" json:"revoked_at,omitempty"`
}

type CreatePairingParams struct {
	WearerID      int64
	DeviceID      int64
	Secret        string
	Code          string
	CodeExpiresAt time.Time
}

// PairingSummary is the list/accept view: pairing fields joined with
// device state and usernames. Secret is populated only for active
// pairings.
type PairingSummary struct {
	ID                int64         `db:"id" json:"id"`
	WearerID          int64         `db:"wearer_id" json:"wearer_id"`
	KeyholderID       *int64        `db:"keyholder_id" json:"keyholder_id,omitempty"`
	DeviceID          int64         `db:"device_id" json:"device_id"`
	Status            PairingStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	WearerUsername    string        `db:"wearer_username" json:"wearer_username"`
	KeyholderUsername *string       `db:"keyholder_username" json:"keyholder_username,omitempty"`
	MacAddress        string        `db:"mac_address" json:"mac_address"`
	DisplayName       *string       `db:"display_name" json:"display_name,omitempty"`
	TypeID            int           `db:"type_id" json:"type_id"`
	Battery           int           `db:"battery" json:"battery"`
	IsUnlocked        bool          `db:"is_unlocked" json:"is_unlocked"`
	LastStatusAt      *time.Time    `db:"last_status_at" json:"last_status_at,omitempty"`
	Secret            string        `db:"secret" json:"hmac_secret,omitempty"`
}
