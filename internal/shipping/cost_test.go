package shipping

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipcalc-backend/pkg/config"
	"github.com/angelmondragon/shipcalc-backend/pkg/enums"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func TestNewRateTable(t *testing.T) {
	t.Parallel()

	cfg := config.ShippingConfig{
		PaczkomatPrice:       decimal.RequireFromString("10"),
		InPostCourierPrice:   decimal.RequireFromString("20"),
		DPDCourierPrice:      decimal.RequireFromString("30"),
		GabarytFallbackPrice: decimal.RequireFromString("50"),
		DefaultCarrier:       "dpd_courier",
	}
	rates, err := NewRateTable(cfg)
	if err != nil {
		t.Fatalf("NewRateTable returned error: %v", err)
	}
	if rates.DefaultCarrier != enums.CarrierDPDCourier {
		t.Fatalf("expected dpd default, got %s", rates.DefaultCarrier)
	}
	if len(rates.Carriers) != 3 || rates.Carriers[0].Carrier != enums.CarrierInPostPaczkomat {
		t.Fatalf("unexpected carrier order: %+v", rates.Carriers)
	}
	if !rates.Gabaryt.Price.Equal(dec(t, "50")) {
		t.Fatalf("expected fallback 50, got %s", rates.Gabaryt.Price)
	}

	cfg.DefaultCarrier = "pigeon"
	if _, err := NewRateTable(cfg); err == nil {
		t.Fatal("expected unknown carrier to be rejected")
	}
	cfg.DefaultCarrier = string(enums.CarrierGabaryt)
	if _, err := NewRateTable(cfg); err == nil {
		t.Fatal("expected gabaryt carrier to be rejected as default")
	}
}

func TestGabarytCost(t *testing.T) {
	t.Parallel()

	rates := DefaultRateTable()
	price := dec(t, "149.00")
	tagged := Package{Kind: enums.PackageKindGabaryt, GabarytPrice: &price}
	untagged := Package{Kind: enums.PackageKindGabaryt}

	if got := rates.GabarytCost(tagged); !got.Equal(price) {
		t.Fatalf("expected tag price, got %s", got)
	}
	if got := rates.GabarytCost(untagged); !got.Equal(dec(t, "99")) {
		t.Fatalf("expected fallback, got %s", got)
	}
	total := rates.GabarytTotal([]Package{tagged, untagged, {Kind: enums.PackageKindStandard}})
	if !total.Equal(dec(t, "248")) {
		t.Fatalf("expected 248 total, got %s", total)
	}
}

func TestStandardCost(t *testing.T) {
	t.Parallel()

	rates := DefaultRateTable()
	pkg := Package{Kind: enums.PackageKindStandard, PaczkomatPackageCount: 3}

	cases := []struct {
		carrier enums.Carrier
		want    string
		ok      bool
	}{
		{carrier: enums.CarrierInPostPaczkomat, want: "47.97", ok: true},
		{carrier: enums.CarrierInPostCourier, want: "19.99", ok: true},
		{carrier: enums.CarrierDPDCourier, want: "18.99", ok: true},
		{carrier: enums.CarrierGabaryt, want: "0", ok: false},
	}
	for _, tc := range cases {
		got, ok := rates.StandardCost(pkg, tc.carrier)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v", tc.carrier, tc.ok)
		}
		if !got.Equal(dec(t, tc.want)) {
			t.Fatalf("%s: expected %s, got %s", tc.carrier, tc.want, got)
		}
	}
}

func TestSummarizeGabarytCascade(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier(nil)
	build := NewBuilder("").BuildPackages([]ResolvedItem{
		resolved(classifier, "v1", 2, "149.00 Gabaryt"),
		resolved(classifier, "v2", 4, "2 produkty w paczce"),
	})
	summary := DefaultRateTable().Summarize(build.Packages, build.FreeShipping)

	if summary.IsPaczkomatAvailable {
		t.Fatal("expected paczkomat to be unavailable with a gabaryt package")
	}
	if !summary.GabarytTotal.Equal(dec(t, "298")) {
		t.Fatalf("expected gabaryt total 298, got %s", summary.GabarytTotal)
	}
	if !summary.ShippingCost.Equal(dec(t, "317.99")) {
		t.Fatalf("expected 298 + 19.99, got %s", summary.ShippingCost)
	}
	if !summary.PaczkomatCost.IsZero() {
		t.Fatalf("expected zero paczkomat cost, got %s", summary.PaczkomatCost)
	}
	if summary.TotalPaczkomatPackages != 2 {
		t.Fatalf("expected 2 locker parcels, got %d", summary.TotalPaczkomatPackages)
	}
	if len(summary.Breakdown) != 2 {
		t.Fatalf("expected 2 breakdown lines, got %+v", summary.Breakdown)
	}
	if summary.Breakdown[0].PackageCount != 2 || summary.Breakdown[1].PackageCount != 1 {
		t.Fatalf("unexpected breakdown counts: %+v", summary.Breakdown)
	}
}

func TestSummarizeStandardOnly(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier(nil)
	build := NewBuilder("").BuildPackages([]ResolvedItem{
		resolved(classifier, "v1", 1, "hurtownia:A"),
		resolved(classifier, "v2", 12, "hurtownia:B"),
	})
	summary := DefaultRateTable().Summarize(build.Packages, false)

	if !summary.IsPaczkomatAvailable {
		t.Fatal("expected paczkomat to be available")
	}
	if !summary.ShippingCost.Equal(dec(t, "39.98")) {
		t.Fatalf("expected 2 x 19.99, got %s", summary.ShippingCost)
	}
	if summary.TotalPaczkomatPackages != 3 {
		t.Fatalf("expected 1 + 2 parcels, got %d", summary.TotalPaczkomatPackages)
	}
	if !summary.PaczkomatCost.Equal(dec(t, "47.97")) {
		t.Fatalf("expected 3 x 15.99, got %s", summary.PaczkomatCost)
	}
}

func TestSummarizeFreeShipping(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier(nil)
	build := NewBuilder("testowy").BuildPackages([]ResolvedItem{
		resolved(classifier, "v1", 1, "testowy"),
		resolved(classifier, "v2", 1, "gabaryt"),
	})
	summary := DefaultRateTable().Summarize(build.Packages, build.FreeShipping)

	if !summary.ShippingCost.IsZero() || !summary.PaczkomatCost.IsZero() {
		t.Fatalf("expected zero costs, got %s / %s", summary.ShippingCost, summary.PaczkomatCost)
	}
	if len(summary.Breakdown) != 1 || !summary.Breakdown[0].Cost.IsZero() {
		t.Fatalf("expected a single free breakdown line, got %+v", summary.Breakdown)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	summary := DefaultRateTable().Summarize(nil, false)
	if !summary.ShippingCost.IsZero() || len(summary.Breakdown) != 0 || summary.TotalPaczkomatPackages != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestGabarytCostZeroTagPrice(t *testing.T) {
	t.Parallel()

	attrs := NewClassifier(nil).Classify([]string{"0.00 Gabaryt"})
	pkg := Package{Kind: enums.PackageKindGabaryt, GabarytPrice: attrs.GabarytUnitPrice}

	if got := DefaultRateTable().GabarytCost(pkg); !got.IsZero() {
		t.Fatalf("expected zero tag price to be charged as-is, got %s", got)
	}
}
