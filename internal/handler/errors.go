package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/service"
)

// writeError maps service errors onto HTTP responses:
//
//	*service.ValidationError -> 400
//	*service.NotFoundError   -> 404
//	*service.ConflictError   -> 409
//	anything else            -> 500, details logged but not returned
func writeError(c echo.Context, log *logrus.Logger, err error) error {
	var ve *service.ValidationError
	var nf *service.NotFoundError
	var ce *service.ConflictError
	switch {
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Error()}
		if len(ve.Missing) > 0 {
			body["missing"] = ve.Missing
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
	case errors.As(err, &ce):
		body := echo.Map{"error": ce.Error()}
		if len(ce.Failures) > 0 {
			body["failed"] = ce.Failures
		}
		return c.JSON(http.StatusConflict, body)
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// bindError turns a bind or struct-validation failure into a 400 that
// names the offending fields by their JSON names.
func bindError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	body := echo.Map{"error": "invalid request"}
	if len(missing) > 0 {
		body["missing"] = missing
	}
	if len(invalid) > 0 {
		body["invalid"] = invalid
	}
	return c.JSON(http.StatusBadRequest, body)
}
