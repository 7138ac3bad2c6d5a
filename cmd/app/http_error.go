package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

// errorJSON maps a service error to a status code and a safe body. The
// wrapped cause never leaves the process.
func errorJSON(c echo.Context, err error) error {
	if ce := services.AsCoded(err); ce != nil {
		status := http.StatusInternalServerError
		switch ce.Kind {
		case services.KindValidation:
			status = http.StatusBadRequest
		case services.KindSignature:
			status = http.StatusUnauthorized
		case services.KindNotFound:
			status = http.StatusNotFound
		case services.KindUpstream:
			status = http.StatusBadGateway
		case services.KindPersistence:
			status = http.StatusInternalServerError
		}
		return c.JSON(status, echo.Map{
			"error": ce.Message,
			"code":  ce.Code,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "internal server error",
	})
}
