package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/badcheese/keymaster-server/internal/model"
)

type mockPairingRepo struct {
	mock.Mock
}

func (m *mockPairingRepo) FindByID(ctx context.Context, id int64) (*model.Pairing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pairing), args.Error(1)
}

func (m *mockPairingRepo) FindByCode(ctx context.Context, code string) (*model.Pairing, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pairing), args.Error(1)
}

func (m *mockPairingRepo) Create(ctx context.Context, params model.CreatePairingParams) (*model.Pairing, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pairing), args.Error(1)
}

func (m *mockPairingRepo) Accept(ctx context.Context, code string, keyholderID int64) (*model.Pairing, error) {
	args := m.Called(ctx, code, keyholderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pairing), args.Error(1)
}

func (m *mockPairingRepo) ClearCode(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPairingRepo) Revoke(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPairingRepo) ListByUserID(ctx context.Context, userID int64) ([]model.PairingSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PairingSummary), args.Error(1)
}

func (m *mockPairingRepo) SummaryByID(ctx context.Context, id int64) (*model.PairingSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PairingSummary), args.Error(1)
}

func (m *mockPairingRepo) DeleteExpiredPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockDeviceRepo struct {
	mock.Mock
}

func (m *mockDeviceRepo) FindByID(ctx context.Context, id int64) (*model.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Device), args.Error(1)
}

func (m *mockDeviceRepo) Create(ctx context.Context, params model.RegisterDeviceParams) (*model.Device, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Device), args.Error(1)
}

func (m *mockDeviceRepo) UpdateStatus(ctx context.Context, id int64, update model.StatusUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

type mockCommandRepo struct {
	mock.Mock
}

func (m *mockCommandRepo) FindByID(ctx context.Context, id int64) (*model.Command, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Command), args.Error(1)
}

func (m *mockCommandRepo) Create(ctx context.Context, params model.CreateCommandParams) (*model.Command, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Command), args.Error(1)
}

func (m *mockCommandRepo) PollForWearer(ctx context.Context, wearerID int64, grace time.Duration) ([]model.Command, error) {
	args := m.Called(ctx, wearerID, grace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Command), args.Error(1)
}

func (m *mockCommandRepo) MarkTerminal(ctx context.Context, id int64, status model.CommandStatus, result []byte) (bool, error) {
	args := m.Called(ctx, id, status, result)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommandRepo) RecentByPairingID(ctx context.Context, pairingID int64, limit int) ([]model.RecentCommand, error) {
	args := m.Called(ctx, pairingID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecentCommand), args.Error(1)
}

func (m *mockCommandRepo) WearerIDForCommand(ctx context.Context, id int64) (int64, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockCommandRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockNonceRepo struct {
	mock.Mock
}

func (m *mockNonceRepo) Admit(ctx context.Context, pairingID int64, nonce string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, pairingID, nonce, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockNonceRepo) Forget(ctx context.Context, pairingID int64, nonce string) error {
	args := m.Called(ctx, pairingID, nonce)
	return args.Error(0)
}

func (m *mockNonceRepo) PurgePairing(ctx context.Context, pairingID int64) (int64, error) {
	args := m.Called(ctx, pairingID)
	return args.Get(0).(int64), args.Error(1)
}
