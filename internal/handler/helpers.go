package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lilalabs/keygate/internal/model"
)

// writeJSON serializes v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the single-field error envelope. The message is the
// user-facing text only; underlying failure detail belongs in the log.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.ErrorResponse{Error: message})
}

// writeMessage writes the single-field success envelope.
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: message})
}

// readJSON decodes the request body as JSON into v and closes the body.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
