package model

// Allergen is a tag shared by dishes and user allergy profiles.
type Allergen struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description,omitempty" gorm:"size:255"`
}
