package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kickoff/fantasy/internal/domain"
)

// MaxBodyBytes caps every decoded request body.
const MaxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for status codes.
// Server-side failures carry the underlying cause as "detail".
func RespondError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		body := map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if appErr.Status >= http.StatusInternalServerError && appErr.Cause != nil {
			body["detail"] = appErr.Cause.Error()
		}
		RespondJSON(w, appErr.Status, body)
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    "INTERNAL_ERROR",
		"message": "internal server error",
	})
}

// DecodeJSON reads and decodes a JSON request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes)).Decode(dst)
}

func respondInvalidBody(w http.ResponseWriter) {
	RespondError(w, domain.ErrBadRequest("invalid request body"))
}
