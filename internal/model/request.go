package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus represents the review state of a purchase or top-up request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// PurchaseRequest is a chef's request to buy ingredients.
type PurchaseRequest struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	ChefID       uint          `json:"chef_id" gorm:"not null;index"`
	ItemName     string        `json:"item_name" gorm:"size:255;not null"`
	Quantity     string        `json:"quantity" gorm:"size:100;not null"`
	Status       RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AdminComment string        `json:"admin_comment,omitempty" gorm:"type:text"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BalanceTopupRequest is a student's request for funds, credited on approval.
type BalanceTopupRequest struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	StudentID    uint            `json:"student_id" gorm:"not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status       RequestStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AdminComment string          `json:"admin_comment,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relations
	Student *User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}
