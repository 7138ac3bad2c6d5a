package model

// PackageStock is a row in the packages table.
type PackageStock struct {
	PackageID     string `json:"packageId"`
	ProductName   string `json:"productName"`
	ProductType   string `json:"productType"`
	StockQuantity int    `json:"stockQuantity"`
	IsActive      bool   `json:"isActive"`
}

// StockOperation is one entry of a bulk inventory update.
type StockOperation struct {
	PackageID string `json:"packageId" validate:"required,uuid4"`
	Operation string `json:"operation" validate:"required,oneof=add subtract set"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// StockOperationError reports a single failed operation inside a batch.
// Sibling operations still apply.
type StockOperationError struct {
	PackageID string `json:"packageId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// InventoryLevel is the API view of a package's stock.
type InventoryLevel struct {
	PackageID    string `json:"packageId"`
	ProductName  string `json:"productName"`
	ProductType  string `json:"productType"`
	CurrentStock int    `json:"currentStock"`
	IsLowStock   bool   `json:"isLowStock"`
}
