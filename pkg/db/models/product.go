package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog listing; its ordered tag list drives shipping rules.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string           `gorm:"column:name;not null"`
	Tags      pq.StringArray   `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	ImageURL  *string          `gorm:"column:image_url"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
