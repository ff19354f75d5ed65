package progress

import (
	"encoding/json"
	"net/http"

	"progress-sync/progress/domain"
)

type errorBody struct {
	Error      string              `json:"error"`
	Details    []domain.FieldError `json:"details,omitempty"`
	RetryAfter int                 `json:"retryAfter,omitempty"`
}

type updateBody struct {
	Success bool                 `json:"success"`
	Data    domain.ProgressState `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
