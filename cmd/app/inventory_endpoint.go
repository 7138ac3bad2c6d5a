package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/middleware"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

type bulkUpdateRequest struct {
	Operations []model.StockOperation `json:"operations" validate:"required,min=1,max=50,dive"`
}

func registerInventoryRoutes(g *echo.Group, is *services.InventoryService) {
	p := g.Group("/inventory")
	p.Use(middleware.JWTMiddleware())
	p.Use(middleware.AdminOnly)

	// STOCK LEVELS
	p.GET("", func(c echo.Context) error {
		levels, err := is.Levels(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load inventory"})
		}
		return c.JSON(http.StatusOK, echo.Map{"data": levels})
	})

	// BULK UPDATE
	p.POST("/bulk", func(c echo.Context) error {
		req := new(bulkUpdateRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		result, err := is.BulkUpdate(c.Request().Context(), req.Operations)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, result)
	})
}
