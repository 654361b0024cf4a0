// Package httputil holds the JSON request/response helpers shared by the
// feature routers.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/veritasos/ordem-backend/internal/apperr"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encoding response: %v", err)
	}
}

// WriteError answers with the status of err's kind and a JSON body
// {"error": message}. Unclassified errors are logged and answered with a
// generic 500.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	msg := "internal server error"

	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	if kind == apperr.KindInternal || kind == apperr.KindConfiguration || kind == apperr.KindUpstream {
		log.Printf("[http] %s error: %v", kind, err)
	}

	WriteJSON(w, kind.Status(), map[string]string{"error": msg})
}

// DecodeJSON reads a JSON body into v. Malformed bodies become validation
// errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.New(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}

// AddServerTiming appends a Server-Timing entry, e.g. generate;dur=812.4.
func AddServerTiming(w http.ResponseWriter, name string, d time.Duration) {
	w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.1f", name, float64(d.Microseconds())/1000))
}
