package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/icebreaker-bot/server/internal/channel"
	errx "github.com/icebreaker-bot/server/internal/core/error"
)

// isJSON accepts application/json and any +json media type, ignoring case and parameters.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// readActivity validates the content type and decodes the envelope.
func (s *Server) readActivity(w http.ResponseWriter, r *http.Request) (*channel.Activity, error) {
	if ct := r.Header.Get("Content-Type"); !isJSON(ct) {
		return nil, errx.UnsupportedMediaType(ct)
	}
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	act, err := channel.DecodeActivity(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errx.New(err, http.StatusRequestEntityTooLarge, "request body too large")
		}
		return nil, errx.MalformedRequest(err)
	}
	return act, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errx.StatusOf(err)
	message := errx.SystemErrorMessage
	var appErr *errx.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	zerolog.Ctx(r.Context()).Warn().
		Err(err).
		Str("kind", string(errx.KindOf(err))).
		Int("status", status).
		Msg("Request failed")
	writeJSON(w, status, map[string]string{"error": message})
}

func writeInvokeResponse(w http.ResponseWriter, resp *channel.InvokeResponse) {
	if resp.Body == nil {
		w.WriteHeader(resp.Status)
		return
	}
	writeJSON(w, resp.Status, resp.Body)
}
