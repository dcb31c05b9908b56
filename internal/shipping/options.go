package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipcalc-backend/pkg/enums"
)

const (
	reasonNoStandardPackages = "cart contains only oversized packages"
	reasonInPostOnlyCart     = "cart contains products that ship only with InPost"
	reasonGabarytInCart      = "oversized products cannot be shipped to a parcel locker"
	reasonGabarytPackage     = "oversized package ships only as a gabaryt shipment"
	reasonNoLockerParcels    = "package has no parcel locker parcels"
)

// WholeCartOptions builds the single carrier menu shared by the whole cart. A
// regular carrier is available only when every standard package supports it;
// the gabaryt shipment is prepended whenever oversized packages exist.
func WholeCartOptions(packages []Package, rates RateTable, freeShipping bool) []CarrierOption {
	options := []CarrierOption{}
	if len(packages) == 0 {
		return options
	}

	var (
		standardCount  int
		lockerParcels  int
		hasGabaryt     bool
		inPostOnlyCart bool
	)
	for _, pkg := range packages {
		if pkg.IsGabaryt() {
			hasGabaryt = true
			continue
		}
		standardCount++
		lockerParcels += pkg.PaczkomatPackageCount
		if pkg.IsInPostOnly {
			inPostOnlyCart = true
		}
	}

	if hasGabaryt {
		options = append(options, availableOption(rates.Gabaryt, rates.GabarytTotal(packages)))
	}

	for _, rate := range rates.Carriers {
		var reason string
		switch {
		case standardCount == 0:
			reason = reasonNoStandardPackages
		case inPostOnlyCart && !rate.Carrier.IsInPost():
			reason = reasonInPostOnlyCart
		case rate.Carrier == enums.CarrierInPostPaczkomat && hasGabaryt:
			reason = reasonGabarytInCart
		}
		if reason != "" {
			options = append(options, unavailableOption(rate, reason))
			continue
		}

		units := standardCount
		if rate.Carrier == enums.CarrierInPostPaczkomat {
			units = lockerParcels
		}
		options = append(options, availableOption(rate, rate.Price.Mul(decimal.NewFromInt(int64(units)))))
	}

	if freeShipping {
		zeroPrices(options)
	}
	return options
}

// PerPackageOptions builds an independent carrier menu for every package and
// pre-selects a default. The returned total is the sum of selected prices.
func PerPackageOptions(packages []Package, rates RateTable, freeShipping bool) ([]PackageOptions, decimal.Decimal) {
	result := make([]PackageOptions, 0, len(packages))
	total := decimal.Zero

	for _, pkg := range packages {
		var options []CarrierOption
		if pkg.IsGabaryt() {
			options = gabarytPackageOptions(pkg, rates)
		} else {
			options = standardPackageOptions(pkg, rates)
		}
		if freeShipping {
			zeroPrices(options)
		}

		selected := defaultSelection(options)
		for _, option := range options {
			if option.CarrierID == selected && option.Available {
				total = total.Add(option.Price)
				break
			}
		}

		result = append(result, PackageOptions{
			Package:           pkg,
			CarrierOptions:    options,
			SelectedCarrierID: selected,
		})
	}

	return result, total
}

func gabarytPackageOptions(pkg Package, rates RateTable) []CarrierOption {
	options := make([]CarrierOption, 0, len(rates.Carriers)+1)
	options = append(options, availableOption(rates.Gabaryt, rates.GabarytCost(pkg)))
	for _, rate := range rates.Carriers {
		options = append(options, unavailableOption(rate, reasonGabarytPackage))
	}
	return options
}

func standardPackageOptions(pkg Package, rates RateTable) []CarrierOption {
	options := make([]CarrierOption, 0, len(rates.Carriers))
	for _, rate := range rates.Carriers {
		if pkg.IsInPostOnly && !rate.Carrier.IsInPost() {
			continue
		}
		if rate.Carrier == enums.CarrierInPostPaczkomat && (!pkg.IsPaczkomatAvailable || pkg.PaczkomatPackageCount == 0) {
			options = append(options, unavailableOption(rate, reasonNoLockerParcels))
			continue
		}
		price, _ := rates.StandardCost(pkg, rate.Carrier)
		options = append(options, availableOption(rate, price))
	}
	return options
}

// defaultSelection prefers the forced gabaryt carrier, then the parcel locker,
// then the InPost courier, then the first available option.
func defaultSelection(options []CarrierOption) enums.Carrier {
	preferred := []enums.Carrier{
		enums.CarrierGabaryt,
		enums.CarrierInPostPaczkomat,
		enums.CarrierInPostCourier,
	}
	for _, carrier := range preferred {
		for _, option := range options {
			if option.CarrierID == carrier && option.Available {
				return carrier
			}
		}
	}
	for _, option := range options {
		if option.Available {
			return option.CarrierID
		}
	}
	return ""
}

func availableOption(rate CarrierRate, price decimal.Decimal) CarrierOption {
	return CarrierOption{
		CarrierID:         rate.Carrier,
		Name:              rate.Name,
		Price:             price,
		Available:         true,
		EstimatedDelivery: rate.EstimatedDelivery,
	}
}

func unavailableOption(rate CarrierRate, reason string) CarrierOption {
	return CarrierOption{
		CarrierID:           rate.Carrier,
		Name:                rate.Name,
		Price:               decimal.Zero,
		Available:           false,
		ReasonIfUnavailable: &reason,
		EstimatedDelivery:   rate.EstimatedDelivery,
	}
}

func zeroPrices(options []CarrierOption) {
	for i := range options {
		options[i].Price = decimal.Zero
	}
}
