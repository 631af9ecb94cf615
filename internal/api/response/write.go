package response

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/gamematch/internal/api/apierr"
)

// JSON encodes data before writing anything, so an encoding failure still
// produces a well-formed internal error instead of a truncated body
func JSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
