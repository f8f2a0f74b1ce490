package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models/dto"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindConflict, apperr.KindInvalidOperation:
		return http.StatusConflict
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse and aborts the chain.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if errors.Is(err, auth.ErrMissingToken) || errors.Is(err, auth.ErrInvalidToken) {
		kind = apperr.KindUnauthenticated
		err = apperr.New(kind, "%v", err)
	}

	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Status:  "error",
		Code:    string(kind),
		Message: apperr.PublicMessage(err),
	})
}

// badRequest reports a body that could not be decoded.
func badRequest(c *gin.Context, err error) {
	writeError(c, apperr.Wrap(apperr.KindInvalidArgument, err, "invalid request body"))
}
