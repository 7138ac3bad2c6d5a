package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

// ActionType enumerates the cart mutations a session can dispatch.
type ActionType string

const (
	ActionAdd         ActionType = "add"
	ActionRemove      ActionType = "remove"
	ActionSetQuantity ActionType = "set_quantity"
	ActionClear       ActionType = "clear"
)

// Action is one typed cart mutation. Item is required for add;
// ItemID for remove and set_quantity.
type Action struct {
	Type     ActionType
	Item     *model.CartItem
	ItemID   string
	Quantity int
}

var (
	ErrUnknownAction = errors.New("unknown cart action")
	ErrMissingItem   = errors.New("add action requires an item")
	ErrInvalidItem   = errors.New("cart item must have an id, a name and a positive price")
)

// Reduce applies a single action to a cart state and returns the new
// state with totals recomputed. The input state is not mutated.
func Reduce(state model.CartState, a Action) (model.CartState, error) {
	items := make([]model.CartItem, len(state.Items))
	copy(items, state.Items)

	switch a.Type {
	case ActionAdd:
		if a.Item == nil {
			return state, ErrMissingItem
		}
		if a.Item.ID == "" || a.Item.ProductName == "" || a.Item.UnitPrice <= 0 {
			return state, ErrInvalidItem
		}
		qty := a.Item.Quantity
		if a.Quantity > 0 {
			qty = a.Quantity
		}
		if qty <= 0 {
			qty = 1
		}
		found := false
		for i := range items {
			if items[i].ID == a.Item.ID {
				// same package twice accumulates quantity
				items[i].Quantity += qty
				found = true
				break
			}
		}
		if !found {
			it := *a.Item
			it.Quantity = qty
			items = append(items, it)
		}

	case ActionRemove:
		items = removeItem(items, a.ItemID)

	case ActionSetQuantity:
		if a.Quantity <= 0 {
			items = removeItem(items, a.ItemID)
			break
		}
		for i := range items {
			if items[i].ID == a.ItemID {
				items[i].Quantity = a.Quantity
				break
			}
		}

	case ActionClear:
		items = nil

	default:
		return state, ErrUnknownAction
	}

	return recompute(items), nil
}

func removeItem(items []model.CartItem, id string) []model.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func recompute(items []model.CartItem) model.CartState {
	if items == nil {
		items = []model.CartItem{}
	}
	state := model.CartState{Items: items}

	subtotal := decimal.Zero
	savings := decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(decimal.NewFromFloat(it.UnitPrice).Mul(qty))
		if it.Savings != nil {
			savings = savings.Add(decimal.NewFromFloat(*it.Savings).Mul(qty))
		}
		state.TotalItems += it.Quantity
	}
	state.Subtotal = subtotal.Round(2).InexactFloat64()
	state.TotalSavings = savings.Round(2).InexactFloat64()
	return state
}
