// Package web holds the HTTP plumbing shared by all services: the response
// envelope, the error boundary, and common middleware.
package web

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

// Envelope is the response body shape every endpoint returns:
// {success, message?, data?} plus endpoint-specific top-level extras.
type Envelope map[string]any

func OK(message string) Envelope {
	e := Envelope{"success": true}
	if message != "" {
		e["message"] = message
	}
	return e
}

func (e Envelope) WithData(data any) Envelope {
	e["data"] = data
	return e
}

func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// RespondError is the single error boundary: it normalizes err to the closed
// apperr taxonomy and writes {success:false, message} with the error's extras.
// Internal errors log the cause and, outside production, expose it in the body.
func RespondError(w http.ResponseWriter, log *zap.Logger, err error) {
	e := apperr.From(err)

	body := Envelope{
		"success": false,
		"message": e.Message,
	}
	for k, v := range e.Details {
		body[k] = v
	}

	if e.Code == apperr.CodeInternal {
		if log != nil {
			log.Error("unexpected error", zap.Error(e))
		}
		if os.Getenv("APP_ENV") != "production" && e.Err != nil {
			body["error"] = e.Err.Error()
		}
	}

	RespondJSON(w, e.HTTPStatus(), body)
}
