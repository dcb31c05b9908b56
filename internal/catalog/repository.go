package catalog

import (
	"context"

	"github.com/angelmondragon/shipcalc-backend/internal/shipping"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const profileColumns = `v.id AS variant_id,
       p.id AS product_id,
       p.name AS name,
       p.tags AS tags,
       COALESCE(v.image_url, p.image_url) AS image_url`

type profileRow struct {
	VariantID string
	ProductID string
	Name      string
	Tags      pq.StringArray
	ImageURL  *string
}

// Repository reads variant tag profiles from the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LoadProfiles resolves every requested variant with one joined query.
// Variants that do not exist are absent from the result.
func (r *Repository) LoadProfiles(ctx context.Context, variantIDs []string) (map[string]shipping.ProductTagProfile, error) {
	profiles := make(map[string]shipping.ProductTagProfile, len(variantIDs))
	if len(variantIDs) == 0 {
		return profiles, nil
	}

	var rows []profileRow
	if err := r.db.WithContext(ctx).
		Table("product_variants AS v").
		Select(profileColumns).
		Joins("JOIN products AS p ON p.id = v.product_id").
		Where("v.id IN ?", variantIDs).
		Scan(&rows).
		Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		tags := []string(row.Tags)
		if tags == nil {
			tags = []string{}
		}
		profiles[row.VariantID] = shipping.ProductTagProfile{
			ProductID: row.ProductID,
			Name:      row.Name,
			Tags:      tags,
			ImageURL:  row.ImageURL,
		}
	}
	return profiles, nil
}
