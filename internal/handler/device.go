package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/service"
)

type DeviceHandler struct {
	deviceService *service.DeviceService
}

func NewDeviceHandler(deviceService *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

func (h *DeviceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	return r
}

// POST /api/device/register
// Called by the wearer to record a device before pairing it.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := requireRole(w, r, model.RoleWearer)
	if user == nil {
		return
	}

	var req struct {
		MacAddress   string  `json:"mac_address" validate:"required,max=64"`
		SerialNumber string  `json:"serial_number" validate:"required,max=128"`
		TypeID       int     `json:"type_id" validate:"required,min=1"`
		DisplayName  *string `json:"display_name" validate:"omitempty,max=128"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	device, err := h.deviceService.Register(r.Context(), model.RegisterDeviceParams{
		OwnerID:      user.ID,
		MacAddress:   req.MacAddress,
		SerialNumber: req.SerialNumber,
		TypeID:       req.TypeID,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		log.Error().Err(err).Int64("userId", user.ID).Msg("failed to register device")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"device_id":     device.ID,
		"mac_address":   device.MacAddress,
		"serial_number": device.SerialNumber,
		"type_id":       device.TypeID,
	})
}
