package main

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/middleware"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

func registerAdminRoutes(g *echo.Group, svc *services.OrderService) {
	p := g.Group("/admin")
	p.Use(middleware.JWTMiddleware())
	p.Use(middleware.AdminOnly)

	// TODAY'S ORDERS
	p.GET("/daily-summary", func(c echo.Context) error {
		summary, err := svc.DailySummary(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not build summary"})
		}
		return c.JSON(http.StatusOK, summary)
	})

	// ORDER LOOKUP
	p.GET("/orders/:orderNumber", func(c echo.Context) error {
		order, err := svc.GetByOrderNumber(c.Request().Context(), c.Param("orderNumber"))
		if err != nil {
			if err == pgx.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load order"})
		}
		return c.JSON(http.StatusOK, order)
	})
}
