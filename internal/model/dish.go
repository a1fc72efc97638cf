package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dish represents a menu item.
type Dish struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"size:255;not null;index"`
	Description   string          `json:"description,omitempty" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	IsBreakfast   bool            `json:"is_breakfast" gorm:"not null;index"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Allergens []Allergen `json:"allergens" gorm:"many2many:dish_allergens;"`
}
