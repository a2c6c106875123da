package middleware

import (
	"net/http"

	"github.com/badcheese/keymaster-server/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}
