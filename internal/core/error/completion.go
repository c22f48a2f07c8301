package errx

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

const (
	completionTimeoutMessage     = "completion api timed out"
	completionRateLimitMessage   = "completion api rate limited"
	completionAuthMessage        = "completion api rejected credentials"
	completionUnavailableMessage = "completion api unavailable"
)

// WrapCompletion maps a completion provider failure to a CompletionAPI AppError.
// Errors that already carry a kind (configuration errors from lazy setup) pass through.
func WrapCompletion(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindUnhandled {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return completion(err, http.StatusGatewayTimeout, completionTimeoutMessage)
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return completion(err, http.StatusBadGateway, messageForStatus(oaErr.StatusCode))
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return completion(err, http.StatusBadGateway, messageForStatus(gErr.Code))
	}

	return completion(err, http.StatusBadGateway, CompletionErrorMessage)
}

func completion(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
		Kind:    KindCompletion,
	}
}

func messageForStatus(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return completionRateLimitMessage
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return completionAuthMessage
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return completionTimeoutMessage
	case code >= 500:
		return completionUnavailableMessage
	default:
		return CompletionErrorMessage
	}
}
