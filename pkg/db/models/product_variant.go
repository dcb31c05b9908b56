package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is a purchasable variant. Its ID is the storefront variant id
// carried by cart lines.
type ProductVariant struct {
	ID        string    `gorm:"column:id;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Title     string    `gorm:"column:title;not null;default:''"`
	ImageURL  *string   `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
