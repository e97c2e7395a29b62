package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dfryer1193/tusitala/api"
	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var validationErr *domain.ValidationError
	var remoteErr *domain.RemoteAPIError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body. Validation errors surface their
// own message, everything else uses msg with the error as details.
func respondError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	body := api.ErrorResponse{Error: msg, Details: err.Error()}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		body = api.ErrorResponse{Error: validationErr.Error()}
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg(msg)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string, details string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: msg, Details: details})
}
