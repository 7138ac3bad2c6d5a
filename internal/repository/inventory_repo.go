package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

var (
	ErrPackageNotFound   = errors.New("package not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type InventoryRepository struct {
	DB *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{DB: db}
}

// Levels returns stock for all active packages ordered by product name.
func (r *InventoryRepository) Levels(ctx context.Context) ([]model.PackageStock, error) {
	query := `
		SELECT id, product_name, product_type, stock_quantity, is_active
		FROM packages WHERE is_active ORDER BY product_name
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PackageStock
	for rows.Next() {
		var p model.PackageStock
		if err := rows.Scan(&p.PackageID, &p.ProductName, &p.ProductType,
			&p.StockQuantity, &p.IsActive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Add increments stock and returns the new quantity.
func (r *InventoryRepository) Add(ctx context.Context, packageID string, qty int) (int, error) {
	var newQty int
	query := `
		UPDATE packages SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id=$1 RETURNING stock_quantity
	`
	err := r.DB.QueryRow(ctx, query, packageID, qty).Scan(&newQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrPackageNotFound
	}
	return newQty, err
}

// Subtract decrements stock. The guard in the WHERE clause keeps the
// read-compute-write inside one statement, so concurrent subtracts on
// the same package cannot lose updates or drive the quantity negative.
func (r *InventoryRepository) Subtract(ctx context.Context, packageID string, qty int) (int, error) {
	var newQty int
	query := `
		UPDATE packages SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id=$1 AND stock_quantity >= $2
		RETURNING stock_quantity
	`
	err := r.DB.QueryRow(ctx, query, packageID, qty).Scan(&newQty)
	if errors.Is(err, pgx.ErrNoRows) {
		// either the package does not exist or the guard refused
		exists, e2 := r.exists(ctx, packageID)
		if e2 != nil {
			return 0, e2
		}
		if !exists {
			return 0, ErrPackageNotFound
		}
		return 0, ErrInsufficientStock
	}
	return newQty, err
}

// Set writes an absolute quantity and returns it.
func (r *InventoryRepository) Set(ctx context.Context, packageID string, qty int) (int, error) {
	var newQty int
	query := `
		UPDATE packages SET stock_quantity = $2, updated_at = now()
		WHERE id=$1 RETURNING stock_quantity
	`
	err := r.DB.QueryRow(ctx, query, packageID, qty).Scan(&newQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrPackageNotFound
	}
	return newQty, err
}

// SubtractByProduct decrements stock for the package matching a product
// name and type. Used by order fulfillment, where the manifest may carry
// ids the store never issued.
func (r *InventoryRepository) SubtractByProduct(ctx context.Context, name, productType string, qty int) (int, error) {
	var newQty int
	query := `
		UPDATE packages SET stock_quantity = stock_quantity - $3, updated_at = now()
		WHERE product_name=$1 AND product_type=$2 AND stock_quantity >= $3
		RETURNING stock_quantity
	`
	err := r.DB.QueryRow(ctx, query, name, productType, qty).Scan(&newQty)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		q := `SELECT EXISTS (SELECT 1 FROM packages WHERE product_name=$1 AND product_type=$2)`
		if e2 := r.DB.QueryRow(ctx, q, name, productType).Scan(&exists); e2 != nil {
			return 0, e2
		}
		if !exists {
			return 0, ErrPackageNotFound
		}
		return 0, ErrInsufficientStock
	}
	return newQty, err
}

func (r *InventoryRepository) exists(ctx context.Context, packageID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM packages WHERE id=$1)`
	if err := r.DB.QueryRow(ctx, query, packageID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
