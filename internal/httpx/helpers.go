package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/NitishSati26/travel-story/internal/serr"
)

// ErrorResponse is the error body shape shared by every endpoint.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func ReadJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(out)
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	return enc.Encode(resp)
}

// HandleErr logs err and writes the matching error response. A ServiceError
// keeps its status and message; anything else becomes a 500 with the
// underlying message surfaced for diagnostics.
func HandleErr(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request error",
		"error", err,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	)

	var se *serr.ServiceError
	if errors.As(err, &se) {
		WriteError(w, se.StatusCode, se.Msg)
		return
	}

	WriteError(w, http.StatusInternalServerError, err.Error())
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: true, Message: msg})
}
