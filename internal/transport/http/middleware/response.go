package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"
)

// errorBody has the same wire shape as the handlers' error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}

// writeTooManyRequests answers 429 with Retry-After set to the whole seconds
// until the client's bucket holds a token again.
func writeTooManyRequests(w http.ResponseWriter, wait time.Duration) {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeJSONError(w, http.StatusTooManyRequests, "too many requests")
}
