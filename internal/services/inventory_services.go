package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/repository"
)

const (
	// LowStockThreshold marks a package as low stock at or below this level
	LowStockThreshold = 5

	// MaxBulkOperations caps a single bulk update call
	MaxBulkOperations = 50
)

// ErrTooManyOperations rejects oversized bulk batches before touching
// the store.
var ErrTooManyOperations = &CodedError{
	Code: "TOO_MANY_OPERATIONS", Kind: KindValidation,
	Message: fmt.Sprintf("bulk update accepts at most %d operations", MaxBulkOperations),
}

// BulkUpdateResult lets the caller distinguish "fully applied" from
// "partially applied": the snapshot reflects what the store holds now,
// the error list names the operations that were refused.
type BulkUpdateResult struct {
	Snapshot []model.InventoryLevel      `json:"data"`
	Errors   []model.StockOperationError `json:"errors"`
}

type InventoryService struct {
	Stock StockStore
	Log   *slog.Logger
}

func NewInventoryService(stock StockStore, log *slog.Logger) *InventoryService {
	return &InventoryService{Stock: stock, Log: log}
}

// Levels returns the current inventory snapshot with low-stock flags.
func (s *InventoryService) Levels(ctx context.Context) ([]model.InventoryLevel, error) {
	stocks, err := s.Stock.Levels(ctx)
	if err != nil {
		return nil, err
	}

	levels := make([]model.InventoryLevel, 0, len(stocks))
	for _, p := range stocks {
		levels = append(levels, model.InventoryLevel{
			PackageID:    p.PackageID,
			ProductName:  p.ProductName,
			ProductType:  p.ProductType,
			CurrentStock: p.StockQuantity,
			IsLowStock:   p.StockQuantity <= LowStockThreshold,
		})
	}
	return levels, nil
}

// BulkUpdate applies each operation independently. A failed operation
// reports its error and leaves its package untouched; siblings still
// apply. The underflow guard lives in the store's conditional update,
// not here.
func (s *InventoryService) BulkUpdate(ctx context.Context, ops []model.StockOperation) (*BulkUpdateResult, error) {
	if len(ops) == 0 {
		return nil, &CodedError{
			Code: "EMPTY_BATCH", Kind: KindValidation,
			Message: "bulk update requires at least one operation",
		}
	}
	if len(ops) > MaxBulkOperations {
		return nil, ErrTooManyOperations
	}

	var opErrors []model.StockOperationError
	for _, op := range ops {
		if op.Quantity < 0 {
			opErrors = append(opErrors, model.StockOperationError{
				PackageID: op.PackageID,
				Code:      "INVALID_QUANTITY",
				Message:   "quantity must be >= 0",
			})
			continue
		}

		var newQty int
		var err error
		switch op.Operation {
		case "add":
			newQty, err = s.Stock.Add(ctx, op.PackageID, op.Quantity)
		case "subtract":
			newQty, err = s.Stock.Subtract(ctx, op.PackageID, op.Quantity)
		case "set":
			newQty, err = s.Stock.Set(ctx, op.PackageID, op.Quantity)
		default:
			opErrors = append(opErrors, model.StockOperationError{
				PackageID: op.PackageID,
				Code:      "INVALID_OPERATION",
				Message:   "operation must be add, subtract or set",
			})
			continue
		}

		switch {
		case err == nil:
			s.Log.Info("inventory updated",
				"package_id", op.PackageID, "operation", op.Operation,
				"quantity", op.Quantity, "stock", newQty)
			if newQty <= LowStockThreshold {
				s.Log.Warn("low stock", "package_id", op.PackageID, "stock", newQty)
			}
		case errors.Is(err, repository.ErrInsufficientStock):
			opErrors = append(opErrors, model.StockOperationError{
				PackageID: op.PackageID,
				Code:      "INSUFFICIENT_STOCK",
				Message:   fmt.Sprintf("cannot subtract %d, not enough stock", op.Quantity),
			})
		case errors.Is(err, repository.ErrPackageNotFound):
			opErrors = append(opErrors, model.StockOperationError{
				PackageID: op.PackageID,
				Code:      "PACKAGE_NOT_FOUND",
				Message:   "package not found",
			})
		default:
			s.Log.Error("inventory operation failed",
				"package_id", op.PackageID, "operation", op.Operation, "error", err)
			opErrors = append(opErrors, model.StockOperationError{
				PackageID: op.PackageID,
				Code:      "UPDATE_FAILED",
				Message:   "could not apply operation",
			})
		}
	}

	snapshot, err := s.Levels(ctx)
	if err != nil {
		return nil, err
	}
	return &BulkUpdateResult{Snapshot: snapshot, Errors: opErrors}, nil
}
