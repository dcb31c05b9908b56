package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/shipcalc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipcalc-backend/pkg/errors"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
	"github.com/angelmondragon/shipcalc-backend/pkg/metrics"
)

const (
	modeCalculate = "calculate"
	modeOptions   = "options"
	modePackages  = "packages"
)

// ProfileLoader resolves variant ids against the catalog in a single batch.
// Unknown ids are absent from the returned map.
type ProfileLoader interface {
	LoadProfiles(ctx context.Context, variantIDs []string) (map[string]ProductTagProfile, error)
}

// Service exposes the shipping calculations to transports.
type Service interface {
	Calculate(ctx context.Context, items []CartLineItem) (*CalculationResult, error)
	CartOptions(ctx context.Context, items []CartLineItem) (*CartOptionsResult, error)
	PackageOptions(ctx context.Context, items []CartLineItem) (*PerPackageResult, error)
}

// ServiceParams wires the calculator. Catalog is required; Classifier,
// Builder and Rates fall back to their defaults.
type ServiceParams struct {
	Catalog    ProfileLoader
	Classifier *Classifier
	Builder    *Builder
	Rates      RateTable
	Logger     *logger.Logger
	Metrics    *metrics.ShippingMetrics
}

type service struct {
	catalog    ProfileLoader
	classifier *Classifier
	builder    *Builder
	rates      RateTable
	logg       *logger.Logger
	metrics    *metrics.ShippingMetrics
}

// NewService builds the shipping calculator.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog profile loader required")
	}
	if params.Classifier == nil {
		params.Classifier = NewClassifier(nil)
	}
	if params.Builder == nil {
		params.Builder = NewBuilder("")
	}
	if len(params.Rates.Carriers) == 0 {
		params.Rates = DefaultRateTable()
	}
	return &service{
		catalog:    params.Catalog,
		classifier: params.Classifier,
		builder:    params.Builder,
		rates:      params.Rates,
		logg:       params.Logger,
		metrics:    params.Metrics,
	}, nil
}

type preparedCart struct {
	build    BuildResult
	warnings []string
}

// Calculate splits the cart into packages and prices it with the default carrier.
func (s *service) Calculate(ctx context.Context, items []CartLineItem) (result *CalculationResult, err error) {
	defer s.observe(modeCalculate, time.Now(), &err)

	prepared, err := s.prepare(ctx, items)
	if err != nil {
		return nil, err
	}
	return s.calculation(prepared), nil
}

// CartOptions returns the calculation with the single whole-cart carrier menu.
func (s *service) CartOptions(ctx context.Context, items []CartLineItem) (result *CartOptionsResult, err error) {
	defer s.observe(modeOptions, time.Now(), &err)

	prepared, err := s.prepare(ctx, items)
	if err != nil {
		return nil, err
	}
	return &CartOptionsResult{
		Calculation:    s.calculation(prepared),
		CarrierOptions: WholeCartOptions(prepared.build.Packages, s.rates, prepared.build.FreeShipping),
	}, nil
}

// PackageOptions returns an independent carrier menu per package.
func (s *service) PackageOptions(ctx context.Context, items []CartLineItem) (result *PerPackageResult, err error) {
	defer s.observe(modePackages, time.Now(), &err)

	prepared, err := s.prepare(ctx, items)
	if err != nil {
		return nil, err
	}
	menus, total := PerPackageOptions(prepared.build.Packages, s.rates, prepared.build.FreeShipping)
	return &PerPackageResult{
		Packages: menus,
		Total:    total,
		Warnings: prepared.warnings,
	}, nil
}

func (s *service) calculation(prepared preparedCart) *CalculationResult {
	summary := s.rates.Summarize(prepared.build.Packages, prepared.build.FreeShipping)
	return &CalculationResult{
		Packages:               prepared.build.Packages,
		TotalPackages:          len(prepared.build.Packages),
		TotalPaczkomatPackages: summary.TotalPaczkomatPackages,
		ShippingCost:           summary.ShippingCost,
		PaczkomatCost:          summary.PaczkomatCost,
		Breakdown:              summary.Breakdown,
		Warnings:               prepared.warnings,
		IsPaczkomatAvailable:   summary.IsPaczkomatAvailable,
		FreeShipping:           prepared.build.FreeShipping,
	}
}

func (s *service) prepare(ctx context.Context, items []CartLineItem) (preparedCart, error) {
	prepared := preparedCart{
		build:    BuildResult{Packages: []Package{}},
		warnings: []string{},
	}
	if err := validateLines(items); err != nil {
		return prepared, err
	}
	if len(items) == 0 {
		return prepared, nil
	}

	if s.logg != nil {
		ctx = s.logg.WithCartSize(ctx, len(items))
	}

	variantIDs := distinctVariantIDs(items)
	profiles, err := s.catalog.LoadProfiles(ctx, variantIDs)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "catalog profile lookup failed", err)
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
			return prepared, typed
		}
		return prepared, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog lookup failed")
	}

	attributes := make(map[string]ShippingAttributes, len(profiles))
	resolvedItems := make([]ResolvedItem, 0, len(items))
	warned := map[string]struct{}{}
	var missing []string

	for _, line := range items {
		profile, ok := profiles[line.VariantID]
		if !ok {
			if _, seen := warned[line.VariantID]; !seen {
				warned[line.VariantID] = struct{}{}
				missing = append(missing, line.VariantID)
				prepared.warnings = append(prepared.warnings, fmt.Sprintf("variant %s not found in catalog; item excluded from shipping", line.VariantID))
			}
			continue
		}
		attrs, ok := attributes[profile.ProductID]
		if !ok {
			attrs = s.classifier.Classify(profile.Tags)
			attributes[profile.ProductID] = attrs
		}
		resolvedItems = append(resolvedItems, ResolvedItem{Line: line, Profile: profile, Attributes: attrs})
	}

	if len(missing) > 0 {
		s.metrics.AddUnresolved(len(missing))
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "variant_ids", missing), "cart variants missing from catalog")
		}
	}

	prepared.build = s.builder.BuildPackages(resolvedItems)
	if prepared.build.Packages == nil {
		prepared.build.Packages = []Package{}
	}
	prepared.warnings = append(prepared.warnings, prepared.build.Notices...)
	s.observePackages(prepared.build.Packages)

	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"packages":      len(prepared.build.Packages),
			"free_shipping": prepared.build.FreeShipping,
		}), "cart packaged")
	}

	return prepared, nil
}

func validateLines(items []CartLineItem) error {
	if len(items) > MaxCartLines {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart may contain at most %d lines", MaxCartLines)).
			WithDetails(map[string]any{"field": "items"})
	}
	total := 0
	for i, item := range items {
		if strings.TrimSpace(item.VariantID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant id is required").
				WithDetails(map[string]any{"index": i, "field": "variantId"})
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"index": i, "field": "quantity"})
		}
		if item.Quantity > MaxLineQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be at most %d", MaxLineQuantity)).
				WithDetails(map[string]any{"index": i, "field": "quantity"})
		}
		total += item.Quantity
	}
	if total > MaxCartQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cart may contain at most %d units", MaxCartQuantity)).
			WithDetails(map[string]any{"field": "items"})
	}
	return nil
}

func distinctVariantIDs(items []CartLineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.VariantID]; ok {
			continue
		}
		seen[item.VariantID] = struct{}{}
		ids = append(ids, item.VariantID)
	}
	return ids
}

func (s *service) observePackages(packages []Package) {
	var gabaryt, standard int
	for _, pkg := range packages {
		if pkg.IsGabaryt() {
			gabaryt++
		} else {
			standard++
		}
	}
	s.metrics.ObservePackages(enums.PackageKindGabaryt.String(), gabaryt)
	s.metrics.ObservePackages(enums.PackageKindStandard.String(), standard)
}

func (s *service) observe(mode string, started time.Time, err *error) {
	outcome := "success"
	if err != nil && *err != nil {
		outcome = strings.ToLower(string(pkgerrors.As(*err).Code()))
	}
	s.metrics.ObserveCalculation(mode, outcome, time.Since(started))
}
