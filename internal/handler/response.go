package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/badcheese/keymaster-server/internal/errors"
	"github.com/badcheese/keymaster-server/internal/httputil"
	"github.com/badcheese/keymaster-server/internal/middleware"
	"github.com/badcheese/keymaster-server/internal/model"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// decodeAndValidate parses the JSON body into dst and runs its
// validate tags. Returns false after writing the error response.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, apperrors.ValidationError(err.Error()))
		return false
	}
	return true
}

// requireRole loads the authenticated user and enforces the role an
// operation is defined for. Returns nil after writing the response.
func requireRole(w http.ResponseWriter, r *http.Request, role model.Role) *model.User {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Unauthorized"))
		return nil
	}
	if user.Role != role {
		writeError(w, apperrors.NotAuthorized())
		return nil
	}
	return user
}

func requireUser(w http.ResponseWriter, r *http.Request) *model.User {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, apperrors.Unauthorized("Unauthorized"))
		return nil
	}
	return user
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
