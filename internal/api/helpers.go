package api

import (
	"encoding/json"
	"net/http"

	"github.com/andrev/phraseflash/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON parses the request body into dst, rejecting unknown fields so
// client typos surface as errors instead of silently ignored options.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}
