package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

func registerCheckoutRoutes(g *echo.Group, cs *services.CheckoutService) {
	p := g.Group("/checkout")

	// PAYMENT INITIATION (public; the hosted page does the rest)
	p.POST("/session", func(c echo.Context) error {
		req := new(services.CheckoutRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		resp, err := cs.CreateSession(c.Request().Context(), req)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, resp)
	})

	// ORDER DETAILS for the success page
	p.GET("/session/:id", func(c echo.Context) error {
		details, err := cs.GetSessionDetails(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, details)
	})
}
