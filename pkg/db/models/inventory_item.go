package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a single stocked product. Names are indexed for search
// but intentionally not unique.
type InventoryItem struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductName string          `gorm:"column:product_name;not null;index:idx_inventory_items_product_name" json:"product_name"`
	Quantity    int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0" json:"unit_price"`
	Category    string          `gorm:"column:category;not null;default:''" json:"category"`
	Description string          `gorm:"column:description;not null;default:''" json:"description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
