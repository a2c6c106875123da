package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/badcheese/keymaster-server/internal/model"
	"github.com/badcheese/keymaster-server/internal/service"
)

type CommandHandler struct {
	commandService *service.CommandService
}

func NewCommandHandler(commandService *service.CommandService) *CommandHandler {
	return &CommandHandler{commandService: commandService}
}

func (h *CommandHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/send", h.Send)
	r.Get("/poll", h.Poll)
	r.Post("/result", h.ReportResult)

	return r
}

// POST /api/command/send
// Called by the keyholder with an HMAC-signed command.
func (h *CommandHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := requireRole(w, r, model.RoleKeyholder)
	if user == nil {
		return
	}

	var req struct {
		PairingID   int64           `json:"pairing_id" validate:"required"`
		CommandType string          `json:"command_type" validate:"required"`
		Params      json.RawMessage `json:"params"`
		Nonce       string          `json:"nonce" validate:"required"`
		Hmac        string          `json:"hmac" validate:"required"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cmd, err := h.commandService.Send(r.Context(), user.ID, service.SendCommandParams{
		PairingID: req.PairingID,
		Type:      model.CommandType(req.CommandType),
		Params:    req.Params,
		Nonce:     req.Nonce,
		Signature: req.Hmac,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"command_id":   cmd.ID,
		"command_type": cmd.Type,
		"status":       cmd.Status,
	})
}

// GET /api/command/poll
// Called by the wearer's background service. Everything returned here
// is marked delivered; commands without a reported result re-surface
// on later polls.
func (h *CommandHandler) Poll(w http.ResponseWriter, r *http.Request) {
	user := requireRole(w, r, model.RoleWearer)
	if user == nil {
		return
	}

	cmds, err := h.commandService.Poll(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	formatted := make([]map[string]any, len(cmds))
	for i, cmd := range cmds {
		formatted[i] = map[string]any{
			"id":           cmd.ID,
			"pairing_id":   cmd.PairingID,
			"command_type": cmd.Type,
			"params":       cmd.Params,
			"created_at":   cmd.CreatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"commands": formatted,
	})
}

// POST /api/command/result
func (h *CommandHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	user := requireRole(w, r, model.RoleWearer)
	if user == nil {
		return
	}

	var req struct {
		CommandID int64           `json:"command_id" validate:"required"`
		Status    string          `json:"status" validate:"required"`
		Result    json.RawMessage `json:"result"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.commandService.ReportResult(r.Context(), user.ID, req.CommandID, model.CommandOutcome(req.Status), req.Result)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
