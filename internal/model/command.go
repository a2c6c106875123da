package model

import (
	"encoding/json"
	"time"
)

type Command struct {
	ID          int64           `db:"id" json:"id"`
	PairingID   int64           `db:"pairing_id" json:"pairing_id"`
	Type        CommandType     `db:"command_type" json:"command_type"`
	Params      json.RawMessage `db:"params" json:"params,omitempty"`
	Nonce       string          `db:"nonce" json:"-"`
	Status      CommandStatus   `db:"status" json:"status"`
	Result      json.RawMessage `db:"result" json:"result,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	DeliveredAt *time.Time      `db:"delivered_at" json:"delivered_at,omitempty"`
	ExecutedAt  *time.Time      `db:"executed_at" json:"executed_at,omitempty"`
}

type CreateCommandParams struct {
	PairingID int64
	Type      CommandType
	Params    json.RawMessage
	Nonce     string
}

// RecentCommand is the trimmed view returned with device status.
type RecentCommand struct {
	ID         int64         `db:"id" json:"id"`
	Type       CommandType   `db:"command_type" json:"command_type"`
	Status     CommandStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	ExecutedAt *time.Time    `db:"executed_at" json:"executed_at,omitempty"`
}
