package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipcalc-backend/pkg/enums"
)

// DefaultPaczkomatUnitLimit is used when a product carries no "w paczce" tag.
const DefaultPaczkomatUnitLimit = 10

// Cart bounds. Gabaryt lines expand into one package per unit, so quantities
// are capped per line and per cart.
const (
	MaxCartLines    = 500
	MaxLineQuantity = 999
	MaxCartQuantity = 5000
)

// CartLineItem is a single cart line submitted by the checkout flow.
type CartLineItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// ProductTagProfile is the catalog view of a variant's product.
type ProductTagProfile struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Tags      []string `json:"tags"`
	ImageURL  *string  `json:"imageUrl,omitempty"`
}

// ShippingAttributes is derived from a product's tags by the Classifier.
type ShippingAttributes struct {
	IsGabaryt bool
	// GabarytUnitPrice is nil when the fallback price applies.
	GabarytUnitPrice *decimal.Decimal
	// Wholesaler is nil for the ungrouped bucket.
	Wholesaler         *string
	PaczkomatUnitLimit int
	Restriction        enums.ShippingRestriction
}

// ResolvedItem joins a cart line with its catalog profile and attributes.
type ResolvedItem struct {
	Line       CartLineItem
	Profile    ProductTagProfile
	Attributes ShippingAttributes
}

type PackageItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	VariantID string  `json:"variantId"`
	Quantity  int     `json:"quantity"`
	ImageURL  *string `json:"imageUrl,omitempty"`

	UnitLimit   int                       `json:"-"`
	Restriction enums.ShippingRestriction `json:"-"`
}

type Package struct {
	ID                    string            `json:"id"`
	Kind                  enums.PackageKind `json:"kind"`
	WholesalerID          *string           `json:"wholesalerId"`
	Items                 []PackageItem     `json:"items"`
	PaczkomatPackageCount int               `json:"paczkomatPackageCount"`
	GabarytPrice          *decimal.Decimal  `json:"gabarytPrice"`
	IsPaczkomatAvailable  bool              `json:"isPaczkomatAvailable"`
	IsInPostOnly          bool              `json:"isInPostOnly"`
}

// IsGabaryt reports whether the package is an oversized single-unit shipment.
func (p Package) IsGabaryt() bool {
	return p.Kind == enums.PackageKindGabaryt
}

// Quantity returns the number of units in the package.
func (p Package) Quantity() int {
	total := 0
	for _, item := range p.Items {
		total += item.Quantity
	}
	return total
}

type CarrierOption struct {
	CarrierID           enums.Carrier   `json:"carrierId"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Available           bool            `json:"available"`
	ReasonIfUnavailable *string         `json:"reasonIfUnavailable,omitempty"`
	EstimatedDelivery   string          `json:"estimatedDelivery"`
}

type BreakdownLine struct {
	Description  string          `json:"description"`
	Cost         decimal.Decimal `json:"cost"`
	PackageCount int             `json:"packageCount"`
}

type CalculationResult struct {
	Packages               []Package       `json:"packages"`
	TotalPackages          int             `json:"totalPackages"`
	TotalPaczkomatPackages int             `json:"totalPaczkomatPackages"`
	ShippingCost           decimal.Decimal `json:"shippingCost"`
	PaczkomatCost          decimal.Decimal `json:"paczkomatCost"`
	Breakdown              []BreakdownLine `json:"breakdown"`
	Warnings               []string        `json:"warnings"`
	IsPaczkomatAvailable   bool            `json:"isPaczkomatAvailable"`
	FreeShipping           bool            `json:"freeShipping"`
}

// CartOptionsResult is the whole-cart carrier menu alongside the calculation.
type CartOptionsResult struct {
	Calculation    *CalculationResult `json:"calculation"`
	CarrierOptions []CarrierOption    `json:"carrierOptions"`
}

type PackageOptions struct {
	Package           Package         `json:"package"`
	CarrierOptions    []CarrierOption `json:"carrierOptions"`
	SelectedCarrierID enums.Carrier   `json:"selectedCarrierId"`
}

// PerPackageResult backs the per-package carrier selection UI.
type PerPackageResult struct {
	Packages []PackageOptions `json:"packages"`
	Total    decimal.Decimal  `json:"total"`
	Warnings []string         `json:"warnings"`
}
