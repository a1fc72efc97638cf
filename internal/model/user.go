package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the access level of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleChef    Role = "chef"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleChef, RoleAdmin:
		return true
	}
	return false
}

// User is a student, chef or admin account. Balance only changes through
// ledger entries.
type User struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Email        string          `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName     string          `json:"full_name" gorm:"size:255;not null"`
	ClassName    string          `json:"class_name,omitempty" gorm:"size:50"`
	PasswordHash string          `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role            `json:"role" gorm:"type:varchar(20);not null;default:'student';index"`
	Balance      decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`
	Preferences  string          `json:"preferences,omitempty" gorm:"type:text"`
	IsActive     bool            `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relations
	Allergens []Allergen `json:"allergens" gorm:"many2many:user_allergens;"`
}

// AllergenIDs returns the ids of the user's allergens.
func (u *User) AllergenIDs() []uint {
	ids := make([]uint, 0, len(u.Allergens))
	for _, a := range u.Allergens {
		ids = append(ids, a.ID)
	}
	return ids
}
