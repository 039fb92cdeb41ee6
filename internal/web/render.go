package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/hpungsan/warden/internal/errors"
)

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes err as a JSON error body with the code's HTTP status.
func renderError(w http.ResponseWriter, err error) {
	var wErr *errors.WardenError
	if !stderrors.As(err, &wErr) {
		wErr = errors.NewInternal(err)
	}

	renderJSON(w, wErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(wErr.Code),
			"message": wErr.Message,
			"status":  wErr.Status,
		},
	})
}
