package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/badcheese/keymaster-server/internal/model"
)

const pairingSummaryColumns = `
	p.id, p.wearer_id, p.keyholder_id, p.device_id, p.status, p.created_at,
	w.username AS wearer_username, k.username AS keyholder_username,
	d.mac_address, d.display_name, d.type_id, d.battery, d.is_unlocked, d.last_status_at,
	p.secret`

type PairingRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Pairing, error)
	FindByCode(ctx context.Context, code string) (*model.Pairing, error)
	Create(ctx context.Context, params model.CreatePairingParams) (*model.Pairing, error)
	Accept(ctx context.Context, code string, keyholderID int64) (*model.Pairing, error)
	ClearCode(ctx context.Context, id int64) error
	Revoke(ctx context.Context, id int64) (bool, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.PairingSummary, error)
	SummaryByID(ctx context.Context, id int64) (*model.PairingSummary, error)
	DeleteExpiredPending(ctx context.Context) (int64, error)
}

type pairingRepo struct {
	db *sqlx.DB
}

func NewPairingRepository(db *sqlx.DB) PairingRepository {
	return &pairingRepo{db: db}
}

func (r *pairingRepo) FindByID(ctx context.Context, id int64) (*model.Pairing, error) {
	var p model.Pairing
	err := r.db.GetContext(ctx, &p, `SELECT * FROM pairings WHERE id = $1`, id)
	return HandleNotFound(&p, err)
}

// FindByCode matches the most recent pairing carrying the code,
// regardless of status, so callers can tell "used" apart from
// "never existed".
func (r *pairingRepo) FindByCode(ctx context.Context, code string) (*model.Pairing, error) {
	var p model.Pairing
	err := r.db.GetContext(ctx, &p, `
		SELECT * FROM pairings
		WHERE code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, code)
	return HandleNotFound(&p, err)
}

func (r *pairingRepo) Create(ctx context.Context, params model.CreatePairingParams) (*model.Pairing, error) {
	var p model.Pairing
	err := r.db.GetContext(ctx, &p, `
		INSERT INTO pairings (wearer_id, device_id, secret, code, status, code_expires_at)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		RETURNING *
	`, params.WearerID, params.DeviceID, params.Secret, params.Code, params.CodeExpiresAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Accept is the compare-and-swap on the pending -> active transition.
// Of N concurrent callers with the same code, exactly one gets a row
// back; the rest see nil and classify the loss with FindByCode.
func (r *pairingRepo) Accept(ctx context.Context, code string, keyholderID int64) (*model.Pairing, error) {
	var p model.Pairing
	err := r.db.GetContext(ctx, &p, `
		UPDATE pairings SET
			status = 'active',
			keyholder_id = $2,
			accepted_at = $3
		WHERE code = $1 AND status = 'pending' AND code_expires_at > $3
		RETURNING *
	`, code, keyholderID, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ClearCode invalidates a code in place, used on the first lookup of
// an expired pending pairing.
func (r *pairingRepo) ClearCode(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pairings SET code = NULL WHERE id = $1 AND status = 'pending'
	`, id)
	return err
}

// Revoke transitions to the terminal revoked state. Returns false when
// the pairing was already revoked.
func (r *pairingRepo) Revoke(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pairings SET
			status = 'revoked',
			revoked_at = $2
		WHERE id = $1 AND status <> 'revoked'
	`, id, time.Now())
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *pairingRepo) ListByUserID(ctx context.Context, userID int64) ([]model.PairingSummary, error) {
	var summaries []model.PairingSummary
	err := r.db.SelectContext(ctx, &summaries, `
		SELECT `+pairingSummaryColumns+`
		FROM pairings p
		JOIN users w ON w.id = p.wearer_id
		LEFT JOIN users k ON k.id = p.keyholder_id
		JOIN devices d ON d.id = p.device_id
		WHERE p.wearer_id = $1 OR p.keyholder_id = $1
		ORDER BY p.created_at DESC
	`, userID)
	return summaries, err
}

func (r *pairingRepo) SummaryByID(ctx context.Context, id int64) (*model.PairingSummary, error) {
	var s model.PairingSummary
	err := r.db.GetContext(ctx, &s, `
		SELECT `+pairingSummaryColumns+`
		FROM pairings p
		JOIN users w ON w.id = p.wearer_id
		LEFT JOIN users k ON k.id = p.keyholder_id
		JOIN devices d ON d.id = p.device_id
		WHERE p.id = $1
	`, id)
	return HandleNotFound(&s, err)
}

// DeleteExpiredPending drops codes that ran out their TTL without ever
// being accepted. An expired pending pairing has no secret holders
// besides the wearer, so removing the row is safe. Rows are kept for an
// hour past expiry: a keyholder trying the code shortly after the TTL
// must still find the row and be told the code expired, not that it
// never existed.
func (r *pairingRepo) DeleteExpiredPending(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM pairings
		WHERE status = 'pending' AND code_expires_at < NOW() - INTERVAL '1 hour'
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
