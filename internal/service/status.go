package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/badcheese/keymaster-server/internal/config"
	apperrors "github.com/badcheese/keymaster-server/internal/errors"
	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/repository"
)

// DeviceStatus is the assembled view for the status endpoint: current
// device fields plus the capped recent-command history.
type DeviceStatus struct {
	Device         model.Device
	RecentCommands []model.RecentCommand
}

type StatusService struct {
	deviceRepo  repository.DeviceRepository
	pairingRepo repository.PairingRepository
	commandRepo repository.CommandRepository
}

func NewStatusService(
	deviceRepo repository.DeviceRepository,
	pairingRepo repository.PairingRepository,
	commandRepo repository.CommandRepository,
) *StatusService {
	return &StatusService{
		deviceRepo:  deviceRepo,
		pairingRepo: pairingRepo,
		commandRepo: commandRepo,
	}
}

// UpdateStatus records a wearer's device push. Absent fields keep
// their stored values.
func (s *StatusService) UpdateStatus(ctx context.Context, wearerID, deviceID int64, update model.StatusUpdate) error {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("find device: %w", err)
	}
	if device == nil || device.OwnerID != wearerID {
		return apperrors.DeviceNotOwned()
	}

	if err := s.deviceRepo.UpdateStatus(ctx, deviceID, update); err != nil {
		return fmt.Errorf("update device status: %w", err)
	}

	log.Debug().Int64("deviceId", deviceID).Msg("device status updated")
	return nil
}

// GetStatus returns the pairing's device state and recent command
// history to either party. Outsiders get the same opaque refusal as a
// missing pairing.
func (s *StatusService) GetStatus(ctx context.Context, userID, pairingID int64) (*DeviceStatus, error) {
	pairing, err := s.pairingRepo.FindByID(ctx, pairingID)
	if err != nil {
		return nil, fmt.Errorf("find pairing: %w", err)
	}
	if pairing == nil || !isParty(pairing, userID) {
		return nil, apperrors.NotAuthorized()
	}

	device, err := s.deviceRepo.FindByID(ctx, pairing.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("find device: %w", err)
	}
	if device == nil {
		return nil, apperrors.NotFound("Device")
	}

	recent, err := s.commandRepo.RecentByPairingID(ctx, pairingID, config.RecentCommandLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent commands: %w", err)
	}

	return &DeviceStatus{
		Device:         *device,
		RecentCommands: recent,
	}, nil
}
