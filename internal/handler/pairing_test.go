package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/service"
)

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

func newPairingHandler(pairingRepo *mockPairingRepo, deviceRepo *mockDeviceRepo, nonceRepo *mockNonceRepo) *PairingHandler {
	svc := service.NewPairingService(pairingRepo, deviceRepo, nonceRepo, 10*time.Minute)
	return NewPairingHandler(svc)
}

func TestPairingHandler_CreateCode(t *testing.T) {
	wearer := &model.User{ID: 1, Username: "wren", Role: model.RoleWearer}

	t.Run("returns 201 with code and secret", func(t *testing.T) {
		pairingRepo := new(mockPairingRepo)
		deviceRepo := new(mockDeviceRepo)
		handler := newPairingHandler(pairingRepo, deviceRepo, new(mockNonceRepo))

		deviceRepo.On("FindByID", mock.Anything, int64(7)).Return(&model.Device{ID: 7, OwnerID: 1}, nil)
		pairingRepo.On("FindByCode", mock.Anything, mock.Anything).Return(nil, nil)
		code := "ABCD2345"
		pairingRepo.On("Create", mock.Anything, mock.Anything).Return(&model.Pairing{
			ID: 10, WearerID: 1, DeviceID: 7,
			Status: model.PairingStatusPending,
			Code:   &code, Secret: testSecret,
			CodeExpiresAt: time.Now().Add(10 * time.Minute),
		}, nil)

		body := bytes.NewBufferString(`{"device_id": 7}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pairing/create-code", body)
		req = req.WithContext(withUser(req.Context(), wearer))
		rec := httptest.NewRecorder()

		handler.CreateCode(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"ABCD2345"`)
		assert.Contains(t, rec.Body.String(), testSecret)
	})

	t.Run("keyholders may not create codes", func(t *testing.T) {
		handler := newPairingHandler(new(mockPairingRepo), new(mockDeviceRepo), new(mockNonceRepo))

		keyholder := &model.User{ID: 5, Role: model.RoleKeyholder}
		body := bytes.NewBufferString(`{"device_id": 7}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pairing/create-code", body)
		req = req.WithContext(withUser(req.Context(), keyholder))
		rec := httptest.NewRecorder()

		handler.CreateCode(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("foreign device returns 404", func(t *testing.T) {
		pairingRepo := new(mockPairingRepo)
		deviceRepo := new(mockDeviceRepo)
		handler := newPairingHandler(pairingRepo, deviceRepo, new(mockNonceRepo))

		deviceRepo.On("FindByID", mock.Anything, int64(7)).Return(&model.Device{ID: 7, OwnerID: 2}, nil)

		body := bytes.NewBufferString(`{"device_id": 7}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pairing/create-code", body)
		req = req.WithContext(withUser(req.Context(), wearer))
		rec := httptest.NewRecorder()

		handler.CreateCode(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "DEVICE_NOT_OWNED")
	})
}

func TestPairingHandler_AcceptCode(t *testing.T) {
	keyholder := &model.User{ID: 5, Username: "kira", Role: model.RoleKeyholder}
	keyholderID := keyholder.ID

	t.Run("returns 200 with the shared secret", func(t *testing.T) {
		pairingRepo := new(mockPairingRepo)
		handler := newPairingHandler(pairingRepo, new(mockDeviceRepo), new(mockNonceRepo))

		pairingRepo.On("Accept", mock.Anything, "ABCD2345", int64(5)).Return(&model.Pairing{
			ID: 10, WearerID: 1, KeyholderID: &keyholderID, Status: model.PairingStatusActive,
		}, nil)
		displayName := "padlock"
		pairingRepo.On("SummaryByID", mock.Anything, int64(10)).Return(&model.PairingSummary{
			ID: 10, WearerID: 1, KeyholderID: &keyholderID,
			WearerUsername: "wren", DeviceID: 7, DisplayName: &displayName,
			Status: model.PairingStatusActive, Secret: testSecret,
		}, nil)

		body := bytes.NewBufferString(`{"code": "abcd2345"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pairing/accept", body)
		req = req.WithContext(withUser(req.Context(), keyholder))
		rec := httptest.NewRecorder()

		handler.AcceptCode(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), testSecret)
		assert.Contains(t, rec.Body.String(), `"wearer_username":"wren"`)
	})

	t.Run("expired code returns 400", func(t *testing.T) {
		pairingRepo := new(mockPairingRepo)
		handler := newPairingHandler(pairingRepo, new(mockDeviceRepo), new(mockNonceRepo))

		pairingRepo.On("Accept", mock.Anything, "OLDC2345", int64(5)).Return(nil, nil)
		pairingRepo.On("FindByCode", mock.Anything, "OLDC2345").Return(&model.Pairing{
			ID: 10, Status: model.PairingStatusPending,
			CodeExpiresAt: time.Now().Add(-time.Minute),
		}, nil)
		pairingRepo.On("ClearCode", mock.Anything, int64(10)).Return(nil)

		body := bytes.NewBufferString(`{"code": "OLDC2345"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pairing/accept", body)
		req = req.WithContext(withUser(req.Context(), keyholder))
		rec := httptest.NewRecorder()

		handler.AcceptCode(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "CODE_EXPIRED")
	})
}

func TestPairingHandler_Revoke(t *testing.T) {
	wearer := &model.User{ID: 1, Username: "wren", Role: model.RoleWearer}

	t.Run("either party may revoke", func(t *testing.T) {
		pairingRepo := new(mockPairingRepo)
		nonceRepo := new(mockNonceRepo)
		handler := newPairingHandler(pairingRepo, new(mockDeviceRepo), nonceRepo)

		keyholderID := int64(5)
		pairingRepo.On("FindByID", mock.Anything, int64(10)).Return(&model.Pairing{
			ID: 10, WearerID: 1, KeyholderID: &keyholderID, Status: model.PairingStatusActive,
		}, nil)
		pairingRepo.On("Revoke", mock.Anything, int64(10)).Return(true, nil)
		nonceRepo.On("PurgePairing", mock.Anything, int64(10)).Return(int64(0), nil)

		body := bytes.NewBufferString(`{"pairing_id": 10}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pairing/revoke", body)
		req = req.WithContext(withUser(req.Context(), wearer))
		rec := httptest.NewRecorder()

		handler.Revoke(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
	})

	t.Run("outsiders get 403", func(t *testing.T) {
		pairingRepo := new(mockPairingRepo)
		handler := newPairingHandler(pairingRepo, new(mockDeviceRepo), new(mockNonceRepo))

		keyholderID := int64(5)
		pairingRepo.On("FindByID", mock.Anything, int64(10)).Return(&model.Pairing{
			ID: 10, WearerID: 2, KeyholderID: &keyholderID, Status: model.PairingStatusActive,
		}, nil)

		body := bytes.NewBufferString(`{"pairing_id": 10}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pairing/revoke", body)
		req = req.WithContext(withUser(req.Context(), wearer))
		rec := httptest.NewRecorder()

		handler.Revoke(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
