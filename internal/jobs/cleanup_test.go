package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/badcheese/keymaster-server/internal/model"
)

type mockPairingRepo struct {
	deleteExpiredCount int64
	deleteCalls        atomic.Int64
}

func (m *mockPairingRepo) FindByID(ctx context.Context, id int64) (*model.Pairing, error) {
	return nil, nil
}

func (m *mockPairingRepo) FindByCode(ctx context.Context, code string) (*model.Pairing, error) {
	return nil, nil
}

func (m *mockPairingRepo) Create(ctx context.Context, params model.CreatePairingParams) (*model.Pairing, error) {
	return nil, nil
}

func (m *mockPairingRepo) Accept(ctx context.Context, code string, keyholderID int64) (*model.Pairing, error) {
	return nil, nil
}

func (m *mockPairingRepo) ClearCode(ctx context.Context, id int64) error {
	return nil
}

func (m *mockPairingRepo) Revoke(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (m *mockPairingRepo) ListByUserID(ctx context.Context, userID int64) ([]model.PairingSummary, error) {
	return nil, nil
}

func (m *mockPairingRepo) SummaryByID(ctx context.Context, id int64) (*model.PairingSummary, error) {
	return nil, nil
}

func (m *mockPairingRepo) DeleteExpiredPending(ctx context.Context) (int64, error) {
	m.deleteCalls.Add(1)
	return m.deleteExpiredCount, nil
}

type mockCommandRepo struct {
	deleteTerminalCount int64
	lastCutoff          atomic.Value
}

func (m *mockCommandRepo) FindByID(ctx context.Context, id int64) (*model.Command, error) {
	return nil, nil
}

func (m *mockCommandRepo) Create(ctx context.Context, params model.CreateCommandParams) (*model.Command, error) {
	return nil, nil
}

func (m *mockCommandRepo) PollForWearer(ctx context.Context, wearerID int64, grace time.Duration) ([]model.Command, error) {
	return nil, nil
}

func (m *mockCommandRepo) MarkTerminal(ctx context.Context, id int64, status model.CommandStatus, result []byte) (bool, error) {
	return false, nil
}

func (m *mockCommandRepo) RecentByPairingID(ctx context.Context, pairingID int64, limit int) ([]model.RecentCommand, error) {
	return nil, nil
}

func (m *mockCommandRepo) WearerIDForCommand(ctx context.Context, id int64) (int64, bool, error) {
	return 0, false, nil
}

func (m *mockCommandRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.lastCutoff.Store(cutoff)
	return m.deleteTerminalCount, nil
}

func TestCleanupJob(t *testing.T) {
	t.Run("creates job with correct interval", func(t *testing.T) {
		job := NewCleanupJob(nil, nil, 30*24*time.Hour, 5*time.Minute)

		assert.NotNil(t, job)
		assert.Equal(t, 5*time.Minute, job.interval)
	})

	t.Run("starts and stops without panic", func(t *testing.T) {
		pairingRepo := &mockPairingRepo{}
		commandRepo := &mockCommandRepo{}

		job := NewCleanupJob(pairingRepo, commandRepo, 30*24*time.Hour, 100*time.Millisecond)

		job.Start()
		time.Sleep(50 * time.Millisecond)
		job.Stop()
	})

	t.Run("runs cleanup on start", func(t *testing.T) {
		pairingRepo := &mockPairingRepo{deleteExpiredCount: 2}
		commandRepo := &mockCommandRepo{deleteTerminalCount: 5}

		job := NewCleanupJob(pairingRepo, commandRepo, 30*24*time.Hour, 1*time.Hour)

		job.Start()
		time.Sleep(10 * time.Millisecond)
		job.Stop()

		assert.GreaterOrEqual(t, pairingRepo.deleteCalls.Load(), int64(1))
	})

	t.Run("prunes commands older than the retention window", func(t *testing.T) {
		pairingRepo := &mockPairingRepo{}
		commandRepo := &mockCommandRepo{}

		job := NewCleanupJob(pairingRepo, commandRepo, 24*time.Hour, 1*time.Hour)

		job.Start()
		time.Sleep(10 * time.Millisecond)
		job.Stop()

		cutoff, ok := commandRepo.lastCutoff.Load().(time.Time)
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(-24*time.Hour), cutoff, time.Minute)
	})
}
