package dto

// CartLine is a single cart line on the wire.
type CartLine struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=999"`
}

// CartRequest is the body shared by every shipping endpoint. An empty items
// array is valid and yields an empty result.
type CartRequest struct {
	Items []CartLine `json:"items" validate:"max=500,dive"`
}
