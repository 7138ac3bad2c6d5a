package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/cart"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

const cartCookieName = "cart_session"

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// cartSessionID reads the visitor's cart cookie, minting one when
// missing. Carts are anonymous; no JWT here.
func cartSessionID(c echo.Context) string {
	if ck, err := c.Cookie(cartCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     cartCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cart.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func registerCartRoutes(g *echo.Group, store *cart.MemoryStore) {
	p := g.Group("/cart")

	// GET cart
	p.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, store.Get(cartSessionID(c)))
	})

	// ADD item
	p.POST("/items", func(c echo.Context) error {
		item := new(model.CartItem)
		if err := c.Bind(item); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		state, err := store.Dispatch(cartSessionID(c), cart.Action{
			Type: cart.ActionAdd,
			Item: item,
		})
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	})

	// UPDATE quantity (0 removes)
	p.PUT("/items/:id", func(c echo.Context) error {
		req := new(setQuantityRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		state, err := store.Dispatch(cartSessionID(c), cart.Action{
			Type:     cart.ActionSetQuantity,
			ItemID:   c.Param("id"),
			Quantity: req.Quantity,
		})
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	})

	// REMOVE item
	p.DELETE("/items/:id", func(c echo.Context) error {
		state, err := store.Dispatch(cartSessionID(c), cart.Action{
			Type:   cart.ActionRemove,
			ItemID: c.Param("id"),
		})
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	})

	// CLEAR cart
	p.DELETE("", func(c echo.Context) error {
		state, err := store.Dispatch(cartSessionID(c), cart.Action{
			Type: cart.ActionClear,
		})
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	})
}
