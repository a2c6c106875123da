package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/service"
)

type PairingHandler struct {
	pairingService *service.PairingService
}

func NewPairingHandler(pairingService *service.PairingService) *PairingHandler {
	return &PairingHandler{pairingService: pairingService}
}

func (h *PairingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/create-code", h.CreateCode)
	r.Post("/accept", h.AcceptCode)
	r.Get("/list", h.List)
	r.Post("/revoke", h.Revoke)

	return r
}

// POST /api/pairing/create-code
// Called by the wearer. The response is one of the two moments the
// pairing secret leaves the server.
func (h *PairingHandler) CreateCode(w http.ResponseWriter, r *http.Request) {
	user := requireRole(w, r, model.RoleWearer)
	if user == nil {
		return
	}

	var req struct {
		DeviceID int64 `json:"device_id" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pairing, err := h.pairingService.CreateCode(r.Context(), user.ID, req.DeviceID)
	if err != nil {
		writeError(w, err)
		return
	}

	code := ""
	if pairing.Code != nil {
		code = *pairing.Code
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"pairing_id":  pairing.ID,
		"code":        code,
		"expires_at":  pairing.CodeExpiresAt.Format(time.RFC3339),
		"hmac_secret": pairing.Secret,
	})
}

// POST /api/pairing/accept
// Called by the keyholder with the code the wearer shared out of band.
func (h *PairingHandler) AcceptCode(w http.ResponseWriter, r *http.Request) {
	user := requireRole(w, r, model.RoleKeyholder)
	if user == nil {
		return
	}

	var req struct {
		Code string `json:"code" validate:"required,min=4,max=16"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	summary, err := h.pairingService.AcceptCode(r.Context(), user.ID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	deviceName := ""
	if summary.DisplayName != nil {
		deviceName = *summary.DisplayName
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pairing_id":      summary.ID,
		"wearer_id":       summary.WearerID,
		"wearer_username": summary.WearerUsername,
		"device_id":       summary.DeviceID,
		"device_name":     deviceName,
		"device_type_id":  summary.TypeID,
		"status":          summary.Status,
		"hmac_secret":     summary.Secret,
	})
}

// GET /api/pairing/list
func (h *PairingHandler) List(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	summaries, err := h.pairingService.List(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int64("userId", user.ID).Msg("failed to list pairings")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pairings": summaries,
	})
}

// POST /api/pairing/revoke
func (h *PairingHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req struct {
		PairingID int64 `json:"pairing_id" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.pairingService.Revoke(r.Context(), user.ID, req.PairingID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
