package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/repository"
)

type DeviceService struct {
	deviceRepo repository.DeviceRepository
}

func NewDeviceService(deviceRepo repository.DeviceRepository) *DeviceService {
	return &DeviceService{deviceRepo: deviceRepo}
}

// Register records a device under the calling wearer. Discovery over
// the local wireless link happens on the client; the server only
// keeps the identity the client reports.
func (s *DeviceService) Register(ctx context.Context, params model.RegisterDeviceParams) (*model.Device, error) {
	device, err := s.deviceRepo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}

	log.Info().
		Int64("deviceId", device.ID).
		Int64("ownerId", params.OwnerID).
		Int("typeId", params.TypeID).
		Msg("device registered")

	return device, nil
}
