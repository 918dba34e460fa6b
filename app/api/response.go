package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// MaxBodyBytes caps every request body the handlers decode.
const MaxBodyBytes = 1 << 20

// LimitBody bounds r.Body to MaxBodyBytes.
func LimitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes body as the JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// PathID parses the {id} path segment, writing a 400 when it is not a
// positive integer.
func PathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		WriteError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
