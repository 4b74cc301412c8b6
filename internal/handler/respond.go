package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// failure is the body of every unsuccessful sync response.
type failure struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Cooldown int    `json:"cooldown,omitempty"`
}

func writeFailure(w http.ResponseWriter, status int, f failure) {
	f.Success = false
	if f.Cooldown > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(f.Cooldown))
	}
	writeJSON(w, status, f)
}
