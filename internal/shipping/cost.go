package shipping

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipcalc-backend/pkg/config"
	"github.com/angelmondragon/shipcalc-backend/pkg/enums"
)

const (
	deliveryInPost  = "1-2 dni robocze"
	deliveryDPD     = "1-3 dni robocze"
	deliveryGabaryt = "3-5 dni roboczych"
)

// CarrierRate is a flat price for one shipment with a carrier.
type CarrierRate struct {
	Carrier           enums.Carrier
	Name              string
	Price             decimal.Decimal
	EstimatedDelivery string
}

// RateTable is the static, read-only carrier price list. Carriers are kept in
// menu order; Gabaryt.Price is the fallback used for packages without a tag
// price.
type RateTable struct {
	Carriers       []CarrierRate
	Gabaryt        CarrierRate
	DefaultCarrier enums.Carrier
}

// DefaultRateTable returns the rates used when nothing is configured.
func DefaultRateTable() RateTable {
	return newRateTable(
		decimal.RequireFromString("15.99"),
		decimal.RequireFromString("19.99"),
		decimal.RequireFromString("18.99"),
		decimal.RequireFromString("99.00"),
		enums.CarrierInPostCourier,
	)
}

// NewRateTable builds the rate table from configuration.
func NewRateTable(cfg config.ShippingConfig) (RateTable, error) {
	carrier, err := enums.ParseCarrier(cfg.DefaultCarrier)
	if err != nil {
		return RateTable{}, err
	}
	if carrier == enums.CarrierGabaryt {
		return RateTable{}, fmt.Errorf("default carrier %q is reserved for oversized packages", carrier)
	}
	return newRateTable(
		cfg.PaczkomatPrice,
		cfg.InPostCourierPrice,
		cfg.DPDCourierPrice,
		cfg.GabarytFallbackPrice,
		carrier,
	), nil
}

func newRateTable(paczkomat, inpostCourier, dpdCourier, gabarytFallback decimal.Decimal, defaultCarrier enums.Carrier) RateTable {
	return RateTable{
		Carriers: []CarrierRate{
			{Carrier: enums.CarrierInPostPaczkomat, Name: "InPost Paczkomat", Price: paczkomat, EstimatedDelivery: deliveryInPost},
			{Carrier: enums.CarrierInPostCourier, Name: "Kurier InPost", Price: inpostCourier, EstimatedDelivery: deliveryInPost},
			{Carrier: enums.CarrierDPDCourier, Name: "Kurier DPD", Price: dpdCourier, EstimatedDelivery: deliveryDPD},
		},
		Gabaryt: CarrierRate{
			Carrier:           enums.CarrierGabaryt,
			Name:              "Przesyłka gabarytowa",
			Price:             gabarytFallback,
			EstimatedDelivery: deliveryGabaryt,
		},
		DefaultCarrier: defaultCarrier,
	}
}

// Rate looks up a regular carrier.
func (r RateTable) Rate(carrier enums.Carrier) (CarrierRate, bool) {
	for _, rate := range r.Carriers {
		if rate.Carrier == carrier {
			return rate, true
		}
	}
	return CarrierRate{}, false
}

// PaczkomatRate returns the per-parcel locker price.
func (r RateTable) PaczkomatRate() decimal.Decimal {
	rate, _ := r.Rate(enums.CarrierInPostPaczkomat)
	return rate.Price
}

// GabarytCost prices a gabaryt package at its tag price, or the fallback.
func (r RateTable) GabarytCost(pkg Package) decimal.Decimal {
	if pkg.GabarytPrice != nil {
		return *pkg.GabarytPrice
	}
	return r.Gabaryt.Price
}

// GabarytTotal sums GabarytCost across every gabaryt package.
func (r RateTable) GabarytTotal(packages []Package) decimal.Decimal {
	total := decimal.Zero
	for _, pkg := range packages {
		if pkg.IsGabaryt() {
			total = total.Add(r.GabarytCost(pkg))
		}
	}
	return total
}

// StandardCost prices one standard package with a regular carrier. The
// paczkomat carrier bills every locker parcel the package expands into.
func (r RateTable) StandardCost(pkg Package, carrier enums.Carrier) (decimal.Decimal, bool) {
	rate, ok := r.Rate(carrier)
	if !ok {
		return decimal.Zero, false
	}
	if carrier == enums.CarrierInPostPaczkomat {
		return rate.Price.Mul(decimal.NewFromInt(int64(pkg.PaczkomatPackageCount))), true
	}
	return rate.Price, true
}

// CostSummary is the cart-level default pricing.
type CostSummary struct {
	ShippingCost           decimal.Decimal
	PaczkomatCost          decimal.Decimal
	GabarytTotal           decimal.Decimal
	TotalPaczkomatPackages int
	IsPaczkomatAvailable   bool
	Breakdown              []BreakdownLine
}

// IsPaczkomatAvailable reports cart-wide locker eligibility: a single gabaryt
// package disqualifies the whole cart.
func IsPaczkomatAvailable(packages []Package) bool {
	for _, pkg := range packages {
		if pkg.IsGabaryt() {
			return false
		}
	}
	return true
}

// Summarize prices the cart with the default courier for standard packages
// plus the gabaryt total. Free shipping zeroes every amount.
func (r RateTable) Summarize(packages []Package, freeShipping bool) CostSummary {
	summary := CostSummary{
		ShippingCost:         decimal.Zero,
		PaczkomatCost:        decimal.Zero,
		GabarytTotal:         decimal.Zero,
		IsPaczkomatAvailable: IsPaczkomatAvailable(packages),
		Breakdown:            []BreakdownLine{},
	}

	var gabarytCount, standardCount int
	for _, pkg := range packages {
		if pkg.IsGabaryt() {
			gabarytCount++
			continue
		}
		standardCount++
		summary.TotalPaczkomatPackages += pkg.PaczkomatPackageCount
	}

	if freeShipping {
		if len(packages) > 0 {
			summary.Breakdown = append(summary.Breakdown, BreakdownLine{
				Description:  "Free shipping",
				Cost:         decimal.Zero,
				PackageCount: len(packages),
			})
		}
		return summary
	}

	if gabarytCount > 0 {
		summary.GabarytTotal = r.GabarytTotal(packages)
		summary.ShippingCost = summary.ShippingCost.Add(summary.GabarytTotal)
		summary.Breakdown = append(summary.Breakdown, BreakdownLine{
			Description:  r.Gabaryt.Name,
			Cost:         summary.GabarytTotal,
			PackageCount: gabarytCount,
		})
	}

	if standardCount > 0 {
		rate, _ := r.Rate(r.DefaultCarrier)
		standard := rate.Price.Mul(decimal.NewFromInt(int64(standardCount)))
		summary.ShippingCost = summary.ShippingCost.Add(standard)
		summary.Breakdown = append(summary.Breakdown, BreakdownLine{
			Description:  rate.Name,
			Cost:         standard,
			PackageCount: standardCount,
		})
	}

	if summary.IsPaczkomatAvailable {
		summary.PaczkomatCost = r.PaczkomatRate().Mul(decimal.NewFromInt(int64(summary.TotalPaczkomatPackages)))
	}

	return summary
}
