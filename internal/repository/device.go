package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/badcheese/keymaster-server/internal/model"
)

type DeviceRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Device, error)
	Create(ctx context.Context, params model.RegisterDeviceParams) (*model.Device, error)
	UpdateStatus(ctx context.Context, id int64, update model.StatusUpdate) error
}

type deviceRepo struct {
	db *sqlx.DB
}

func NewDeviceRepository(db *sqlx.DB) DeviceRepository {
	return &deviceRepo{db: db}
}

func (r *deviceRepo) FindByID(ctx context.Context, id int64) (*model.Device, error) {
	var d model.Device
	err := r.db.GetContext(ctx, &d, `SELECT * FROM devices WHERE id = $1`, id)
	return HandleNotFound(&d, err)
}

func (r *deviceRepo) Create(ctx context.Context, params model.RegisterDeviceParams) (*model.Device, error) {
	var d model.Device
	err := r.db.GetContext(ctx, &d, `
		INSERT INTO devices (owner_id, mac_address, serial_number, type_id, display_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.OwnerID, params.MacAddress, params.SerialNumber, params.TypeID, params.DisplayName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateStatus applies a partial status push; nil fields keep the
// stored value.
func (r *deviceRepo) UpdateStatus(ctx context.Context, id int64, update model.StatusUpdate) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE devices SET
			battery = COALESCE($2, battery),
			is_unlocked = COALESCE($3, is_unlocked),
			last_status_at = $4
		WHERE id = $1
	`, id, update.Battery, update.IsUnlocked, time.Now())
	return err
}
