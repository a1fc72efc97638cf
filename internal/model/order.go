package model

import "time"

// PaymentType tells how an order was paid for.
type PaymentType string

const (
	PaymentTypeOneTime      PaymentType = "one-time"
	PaymentTypeSubscription PaymentType = "subscription"
)

// Valid reports whether p is a known payment type.
func (p PaymentType) Valid() bool {
	return p == PaymentTypeOneTime || p == PaymentTypeSubscription
}

// Order is one unit of a dish bought by a student. Only IsReceived changes
// after creation.
type Order struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	StudentID   uint        `json:"student_id" gorm:"not null;index"`
	DishID      uint        `json:"dish_id" gorm:"not null;index"`
	PaymentType PaymentType `json:"payment_type" gorm:"type:varchar(20);not null"`
	OrderDate   *time.Time  `json:"order_date" gorm:"index"`
	IsReceived  bool        `json:"is_received" gorm:"not null;default:false"`
	CreatedAt   time.Time   `json:"created_at" gorm:"index"`

	// Relations
	Student User `json:"-" gorm:"foreignKey:StudentID"`
	Dish    Dish `json:"dish" gorm:"foreignKey:DishID"`
}
