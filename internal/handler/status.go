package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/badcheese/keymaster-server/internal/errors"
	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/service"
)

type StatusHandler struct {
	statusService *service.StatusService
}

func NewStatusHandler(statusService *service.StatusService) *StatusHandler {
	return &StatusHandler{statusService: statusService}
}

func (h *StatusHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/update", h.Update)
	r.Get("/{pairingID}", h.Get)

	return r
}

// POST /api/status/update
// Partial update: omitted fields keep their stored values.
func (h *StatusHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := requireRole(w, r, model.RoleWearer)
	if user == nil {
		return
	}

	var req struct {
		DeviceID   int64 `json:"device_id" validate:"required"`
		Battery    *int  `json:"battery" validate:"omitempty,min=0,max=100"`
		IsUnlocked *bool `json:"is_unlocked"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.statusService.UpdateStatus(r.Context(), user.ID, req.DeviceID, model.StatusUpdate{
		Battery:    req.Battery,
		IsUnlocked: req.IsUnlocked,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/status/{pairingID}
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	pairingID, err := strconv.ParseInt(chi.URLParam(r, "pairingID"), 10, 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("pairingId", "must be an integer"))
		return
	}

	status, err := h.statusService.GetStatus(r.Context(), user.ID, pairingID)
	if err != nil {
		writeError(w, err)
		return
	}

	deviceName := ""
	if status.Device.DisplayName != nil {
		deviceName = *status.Device.DisplayName
	}

	recent := make([]map[string]any, len(status.RecentCommands))
	for i, cmd := range status.RecentCommands {
		recent[i] = map[string]any{
			"id":           cmd.ID,
			"command_type": cmd.Type,
			"status":       cmd.Status,
			"created_at":   cmd.CreatedAt.Format(time.RFC3339),
			"executed_at":  formatTime(cmd.ExecutedAt),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":       status.Device.ID,
		"device_name":     deviceName,
		"type_id":         status.Device.TypeID,
		"battery":         status.Device.Battery,
		"is_unlocked":     status.Device.IsUnlocked,
		"last_status_at":  formatTime(status.Device.LastStatusAt),
		"recent_commands": recent,
	})
}
