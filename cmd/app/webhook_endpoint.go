package main

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	stripeapi "github.com/gpb360/fibre-elite-glow-sub005/external/stripe"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/logging"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

// webhookMaxBody bounds the raw payload read. Stripe events are small;
// anything bigger is not one.
const webhookMaxBody = 1 << 20

func registerWebhookRoutes(g *echo.Group, gw *stripeapi.Client, ws *services.WebhookService) {
	p := g.Group("/webhooks")

	// STRIPE EVENTS
	// (NO JWT, must be public; the signature is the auth)
	p.POST("/stripe", func(c echo.Context) error {
		payload, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBody))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read body"})
		}

		event, err := gw.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"))
		if err != nil {
			logging.L().Warn("webhook signature rejected", "error", err)
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": services.ErrSignatureInvalid.Message,
				"code":  services.ErrSignatureInvalid.Code,
			})
		}

		if err := ws.HandleEvent(c.Request().Context(), event); err != nil {
			// IMPORTANT:
			// a non-2xx makes Stripe redeliver; only the order write may
			// trigger this
			return errorJSON(c, err)
		}

		return c.JSON(http.StatusOK, echo.Map{"received": true})
	})
}
