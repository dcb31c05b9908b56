package shipping

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/shipcalc-backend/pkg/enums"
)

// FreeShippingNotice is appended to warnings when the test marker override fires.
const FreeShippingNotice = "free shipping applied: cart contains a test-marked product"

// BuildResult is the package split for one cart.
type BuildResult struct {
	Packages     []Package
	FreeShipping bool
	Notices      []string
}

// Builder splits resolved cart items into shipment packages.
type Builder struct {
	freeShippingTag string
}

// NewBuilder returns a builder. An empty freeShippingTag disables the test
// marker override.
func NewBuilder(freeShippingTag string) *Builder {
	return &Builder{freeShippingTag: strings.TrimSpace(freeShippingTag)}
}

// BuildPackages emits gabaryt packages first, one per unit in cart order, then
// one standard package per wholesaler bucket in order of first appearance.
func (b *Builder) BuildPackages(items []ResolvedItem) BuildResult {
	if b.hasFreeShippingMarker(items) {
		return b.freeShippingResult(items)
	}

	var (
		gabaryt []Package
		buckets []*wholesalerBucket
		index   = map[bucketKey]*wholesalerBucket{}
	)

	for _, item := range items {
		if item.Line.Quantity <= 0 {
			continue
		}
		if item.Attributes.IsGabaryt {
			for unit := 0; unit < item.Line.Quantity; unit++ {
				gabaryt = append(gabaryt, gabarytPackage(len(gabaryt)+1, item))
			}
			continue
		}

		key := newBucketKey(item.Attributes.Wholesaler)
		bucket, ok := index[key]
		if !ok {
			bucket = &wholesalerBucket{wholesaler: item.Attributes.Wholesaler}
			index[key] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.items = append(bucket.items, packageItem(item, item.Line.Quantity))
	}

	packages := make([]Package, 0, len(gabaryt)+len(buckets))
	packages = append(packages, gabaryt...)
	for i, bucket := range buckets {
		packages = append(packages, standardPackage(i+1, bucket.wholesaler, bucket.items))
	}

	return BuildResult{Packages: packages}
}

// hasFreeShippingMarker is the single entry point of the test/demo override.
func (b *Builder) hasFreeShippingMarker(items []ResolvedItem) bool {
	if b.freeShippingTag == "" {
		return false
	}
	for _, item := range items {
		for _, tag := range item.Profile.Tags {
			if strings.EqualFold(strings.TrimSpace(tag), b.freeShippingTag) {
				return true
			}
		}
	}
	return false
}

func (b *Builder) freeShippingResult(items []ResolvedItem) BuildResult {
	packed := make([]PackageItem, 0, len(items))
	for _, item := range items {
		if item.Line.Quantity <= 0 {
			continue
		}
		packed = append(packed, packageItem(item, item.Line.Quantity))
	}

	pkg := standardPackage(1, nil, packed)
	pkg.PaczkomatPackageCount = 1

	return BuildResult{
		Packages:     []Package{pkg},
		FreeShipping: true,
		Notices:      []string{FreeShippingNotice},
	}
}

type bucketKey struct {
	grouped bool
	id      string
}

func newBucketKey(wholesaler *string) bucketKey {
	if wholesaler == nil {
		return bucketKey{}
	}
	return bucketKey{grouped: true, id: *wholesaler}
}

type wholesalerBucket struct {
	wholesaler *string
	items      []PackageItem
}

func packageItem(item ResolvedItem, quantity int) PackageItem {
	limit := item.Attributes.PaczkomatUnitLimit
	if limit <= 0 {
		limit = DefaultPaczkomatUnitLimit
	}
	return PackageItem{
		ProductID:   item.Profile.ProductID,
		Name:        item.Profile.Name,
		VariantID:   item.Line.VariantID,
		Quantity:    quantity,
		ImageURL:    item.Profile.ImageURL,
		UnitLimit:   limit,
		Restriction: item.Attributes.Restriction,
	}
}

func gabarytPackage(seq int, item ResolvedItem) Package {
	return Package{
		ID:                   fmt.Sprintf("%s-%d", enums.PackageKindGabaryt, seq),
		Kind:                 enums.PackageKindGabaryt,
		WholesalerID:         item.Attributes.Wholesaler,
		Items:                []PackageItem{packageItem(item, 1)},
		GabarytPrice:         item.Attributes.GabarytUnitPrice,
		IsPaczkomatAvailable: false,
	}
}

func standardPackage(seq int, wholesaler *string, items []PackageItem) Package {
	pkg := Package{
		ID:                   fmt.Sprintf("%s-%d", enums.PackageKindStandard, seq),
		Kind:                 enums.PackageKindStandard,
		WholesalerID:         wholesaler,
		Items:                items,
		IsPaczkomatAvailable: true,
	}
	for _, item := range items {
		pkg.PaczkomatPackageCount += parcelsFor(item.Quantity, item.UnitLimit)
		if item.Restriction == enums.ShippingRestrictionInPostOnly {
			pkg.IsInPostOnly = true
		}
	}
	return pkg
}

// parcelsFor returns ceil(quantity / limit).
func parcelsFor(quantity, limit int) int {
	if quantity <= 0 {
		return 0
	}
	if limit <= 0 {
		limit = DefaultPaczkomatUnitLimit
	}
	parcels := quantity / limit
	if quantity%limit != 0 {
		parcels++
	}
	return parcels
}
