package shipping

import (
	"github.com/angelmondragon/shipcalc-backend/api/controllers/shipping/dto"
	shippingsvc "github.com/angelmondragon/shipcalc-backend/internal/shipping"
)

func toCartLines(payload dto.CartRequest) []shippingsvc.CartLineItem {
	items := make([]shippingsvc.CartLineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, shippingsvc.CartLineItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return items
}
