package handlers

import (
	"errors"
	"io"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/internal/application"
	"github.com/oksasatya/tourism-booking-api/pkg/response"
	"github.com/oksasatya/tourism-booking-api/pkg/validation"
)

// StatusFor maps an application error kind to its HTTP status.
func StatusFor(k application.ErrorKind) int {
	switch k {
	case application.KindValidation, application.KindConflict, application.KindExpired:
		return http.StatusBadRequest
	case application.KindAuth:
		return http.StatusUnauthorized
	case application.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place where service errors become HTTP responses.
// Internal failures are logged and reported to Sentry when a hub is attached.
func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	var ae *application.Error
	if !errors.As(err, &ae) {
		ae = application.InternalError("unexpected error", err)
	}
	status := StatusFor(ae.Kind)
	if status < http.StatusInternalServerError {
		response.Error(c, status, ae.Message, "", ae.Fields)
		return
	}

	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	response.Error(c, status, "Server error", ae.Message, nil)
}

// bindJSON decodes the body into dst. An empty body leaves dst zero so the
// service reports the missing fields itself.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "invalid payload", "", validation.ToDetails(err))
		return false
	}
	return true
}
