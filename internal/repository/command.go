package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/badcheese/keymaster-server/internal/model"
)

type CommandRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Command, error)
	Create(ctx context.Context, params model.CreateCommandParams) (*model.Command, error)
	PollForWearer(ctx context.Context, wearerID int64, grace time.Duration) ([]model.Command, error)
	MarkTerminal(ctx context.Context, id int64, status model.CommandStatus, result []byte) (bool, error)
	RecentByPairingID(ctx context.Context, pairingID int64, limit int) ([]model.RecentCommand, error)
	WearerIDForCommand(ctx context.Context, id int64) (int64, bool, error)
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type commandRepo struct {
	db *sqlx.DB
}

func NewCommandRepository(db *sqlx.DB) CommandRepository {
	return &commandRepo{db: db}
}

func (r *commandRepo) FindByID(ctx context.Context, id int64) (*model.Command, error) {
	var c model.Command
	err := r.db.GetContext(ctx, &c, `SELECT * FROM commands WHERE id = $1`, id)
	return HandleNotFound(&c, err)
}

func (r *commandRepo) Create(ctx context.Context, params model.CreateCommandParams) (*model.Command, error) {
	var c model.Command
	err := r.db.GetContext(ctx, &c, `
		INSERT INTO commands (pairing_id, command_type, params, nonce, status)
		VALUES ($1, $2, $3, $4, 'queued')
		RETURNING *
	`, params.PairingID, params.Type, params.Params, params.Nonce)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PollForWearer selects and marks delivered, in one statement, every
// command due for the wearer's pairings: anything still queued, plus
// delivered commands whose last delivery is older than the grace
// interval (a poll response that never reached the device). Returned
// in creation order per pairing.
func (r *commandRepo) PollForWearer(ctx context.Context, wearerID int64, grace time.Duration) ([]model.Command, error) {
	var cmds []model.Command
	err := r.db.SelectContext(ctx, &cmds, `
		WITH due AS (
			SELECT c.id
			FROM commands c
			JOIN pairings p ON p.id = c.pairing_id
			WHERE p.wearer_id = $1
			  AND p.status = 'active'
			  AND (c.status = 'queued'
			       OR (c.status = 'delivered' AND c.delivered_at < $2))
			FOR UPDATE OF c
		), marked AS (
			UPDATE commands SET
				status = 'delivered',
				delivered_at = $3
			WHERE id IN (SELECT id FROM due)
			RETURNING *
		)
		SELECT * FROM marked ORDER BY created_at ASC, id ASC
	`, wearerID, time.Now().Add(-grace), time.Now())
	return cmds, err
}

// MarkTerminal is the conditional write closing a command's lifecycle.
// Returns false when the command was already terminal (or missing).
func (r *commandRepo) MarkTerminal(ctx context.Context, id int64, status model.CommandStatus, result []byte) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE commands SET
			status = $2,
			result = $3,
			executed_at = $4
		WHERE id = $1 AND status IN ('queued', 'delivered')
	`, id, status, result, time.Now())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *commandRepo) RecentByPairingID(ctx context.Context, pairingID int64, limit int) ([]model.RecentCommand, error) {
	var cmds []model.RecentCommand
	err := r.db.SelectContext(ctx, &cmds, `
		SELECT id, command_type, status, created_at, executed_at
		FROM commands
		WHERE pairing_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, pairingID, limit)
	return cmds, err
}

// WearerIDForCommand resolves which wearer a command belongs to, for
// result-report ownership checks. The second return is false when the
// command does not exist.
func (r *commandRepo) WearerIDForCommand(ctx context.Context, id int64) (int64, bool, error) {
	var wearerID int64
	err := r.db.GetContext(ctx, &wearerID, `
		SELECT p.wearer_id
		FROM commands c
		JOIN pairings p ON p.id = c.pairing_id
		WHERE c.id = $1
	`, id)
	if ptr, hErr := HandleNotFound(&wearerID, err); hErr != nil {
		return 0, false, hErr
	} else if ptr == nil {
		return 0, false, nil
	}
	return wearerID, true, nil
}

func (r *commandRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM commands
		WHERE status IN ('executed', 'failed') AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
