package main

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

// Rate limits match the sensitivity of each operation: verification is
// called once per successful checkout, recovery only when something went
// wrong.
const (
	verifyRateLimit  = 10
	recoverRateLimit = 3
)

func recoveryRateLimiter(limit int) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(time.Hour / time.Duration(limit)),
			Burst:     limit,
			ExpiresIn: time.Hour,
		}),
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "could not identify client", "code": "RATE_LIMIT_IDENTITY",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error": "too many attempts, please try again later", "code": "RATE_LIMITED",
			})
		},
	})
}

func registerRecoveryRoutes(g *echo.Group, rs *services.RecoveryService) {
	p := g.Group("/checkout")

	// POST-CHECKOUT VERIFICATION for the success page
	p.POST("/verify", func(c echo.Context) error {
		req := new(services.VerifyRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		result, err := rs.VerifyTransaction(c.Request().Context(), req)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}, recoveryRateLimiter(verifyRateLimit))

	// PAYMENT RECOVERY when the redirect or webhook was lost
	p.POST("/recover", func(c echo.Context) error {
		req := new(services.RecoverRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		result, err := rs.RecoverPayment(c.Request().Context(), req)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}, recoveryRateLimiter(recoverRateLimit))
}
