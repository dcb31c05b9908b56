package shipping

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipcalc-backend/pkg/enums"
)

const wholesalerTagPrefix = "hurtownia:"

var (
	pricedGabarytRe = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*(?:zł|zl|pln)?\s*gabaryt\s*$`)
	plainGabarytRe  = regexp.MustCompile(`(?i)(?:^|[^\p{L}])gabaryt(?:owy|owa|owe|owych)?(?:$|[^\p{L}])`)
	unitLimitRe     = regexp.MustCompile(`(?i)^\s*(\d+)\s*(?:produkt|produkty|produktów|produktow)\s+w\s+paczce\s*$`)
	joinerRe        = regexp.MustCompile(`[+&/]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

var courierOnlyPhrases = map[string]struct{}{
	"tylkokurier":   {},
	"tylkokurierem": {},
}

var inPostOnlyPhrases = map[string]struct{}{
	"paczkomatyikurier": {},
	"paczkomatikurier":  {},
}

// match is the result of a rule: either no match or a matched value.
type match[T any] struct {
	Value   T
	Matched bool
}

func matched[T any](value T) match[T] {
	return match[T]{Value: value, Matched: true}
}

// tagRule inspects a single tag and extracts a typed value on match.
type tagRule[T any] struct {
	name    string
	extract func(tag string) (T, bool)
}

func (r tagRule[T]) apply(tag string) match[T] {
	if value, ok := r.extract(tag); ok {
		return matched(value)
	}
	return match[T]{}
}

// matchTag returns the first rule in table order that matches tag.
func matchTag[T any](tag string, rules []tagRule[T]) match[T] {
	for _, rule := range rules {
		if m := rule.apply(tag); m.Matched {
			return m
		}
	}
	return match[T]{}
}

// firstInTagOrder returns the match of the earliest tag any rule accepts.
func firstInTagOrder[T any](tags []string, rules []tagRule[T]) match[T] {
	for _, tag := range tags {
		if m := matchTag(tag, rules); m.Matched {
			return m
		}
	}
	return match[T]{}
}

// firstByRulePriority returns the match of the highest priority rule that
// accepts any tag.
func firstByRulePriority[T any](tags []string, rules []tagRule[T]) match[T] {
	for _, rule := range rules {
		for _, tag := range tags {
			if m := rule.apply(tag); m.Matched {
				return m
			}
		}
	}
	return match[T]{}
}

type gabarytTag struct {
	price *decimal.Decimal
}

// Classifier derives ShippingAttributes from product tags. It is immutable
// and safe for concurrent use.
type Classifier struct {
	gabarytRules     []tagRule[gabarytTag]
	wholesalerRules  []tagRule[string]
	unitLimitRules   []tagRule[int]
	restrictionRules []tagRule[enums.ShippingRestriction]
}

// NewClassifier builds a classifier that recognises the given wholesaler names
// as exact-match tags in addition to the "hurtownia:" prefix.
func NewClassifier(knownWholesalers []string) *Classifier {
	known := make(map[string]string, len(knownWholesalers))
	for _, name := range knownWholesalers {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		known[strings.ToLower(trimmed)] = trimmed
	}

	return &Classifier{
		gabarytRules: []tagRule[gabarytTag]{
			{name: "priced_gabaryt", extract: pricedGabaryt},
			{name: "gabaryt", extract: plainGabaryt},
			{name: "courier_only_synonym", extract: courierOnlyGabaryt},
		},
		wholesalerRules: []tagRule[string]{
			{name: "wholesaler_prefix", extract: prefixedWholesaler(known)},
			{name: "known_wholesaler", extract: knownWholesaler(known)},
		},
		unitLimitRules: []tagRule[int]{
			{name: "units_per_parcel", extract: unitsPerParcel},
		},
		restrictionRules: []tagRule[enums.ShippingRestriction]{
			{name: "courier_only", extract: phraseRestriction(courierOnlyPhrases, enums.ShippingRestrictionCourierOnly)},
			{name: "inpost_only", extract: phraseRestriction(inPostOnlyPhrases, enums.ShippingRestrictionInPostOnly)},
		},
	}
}

// Classify maps a product's tag list to its shipping attributes. Each
// attribute category is evaluated independently and unmatched tags are ignored.
func (c *Classifier) Classify(tags []string) ShippingAttributes {
	attrs := ShippingAttributes{
		PaczkomatUnitLimit: DefaultPaczkomatUnitLimit,
		Restriction:        enums.ShippingRestrictionNone,
	}

	for _, tag := range tags {
		m := matchTag(tag, c.gabarytRules)
		if !m.Matched {
			continue
		}
		attrs.IsGabaryt = true
		if attrs.GabarytUnitPrice == nil && m.Value.price != nil {
			attrs.GabarytUnitPrice = m.Value.price
		}
	}

	if m := firstInTagOrder(tags, c.wholesalerRules); m.Matched {
		id := m.Value
		attrs.Wholesaler = &id
	}

	if m := firstInTagOrder(tags, c.unitLimitRules); m.Matched {
		attrs.PaczkomatUnitLimit = m.Value
	}

	if m := firstByRulePriority(tags, c.restrictionRules); m.Matched {
		attrs.Restriction = m.Value
	}

	return attrs
}

func pricedGabaryt(tag string) (gabarytTag, bool) {
	groups := pricedGabarytRe.FindStringSubmatch(tag)
	if groups == nil {
		return gabarytTag{}, false
	}
	price, err := decimal.NewFromString(strings.Replace(groups[1], ",", ".", 1))
	if err != nil {
		return gabarytTag{}, false
	}
	return gabarytTag{price: &price}, true
}

func plainGabaryt(tag string) (gabarytTag, bool) {
	return gabarytTag{}, plainGabarytRe.MatchString(tag)
}

func courierOnlyGabaryt(tag string) (gabarytTag, bool) {
	_, ok := courierOnlyPhrases[compactPhrase(tag)]
	return gabarytTag{}, ok
}

func prefixedWholesaler(known map[string]string) func(string) (string, bool) {
	return func(tag string) (string, bool) {
		trimmed := strings.TrimSpace(tag)
		if len(trimmed) <= len(wholesalerTagPrefix) || !strings.EqualFold(trimmed[:len(wholesalerTagPrefix)], wholesalerTagPrefix) {
			return "", false
		}
		id := strings.TrimSpace(trimmed[len(wholesalerTagPrefix):])
		if id == "" {
			return "", false
		}
		if canonical, ok := known[strings.ToLower(id)]; ok {
			return canonical, true
		}
		return id, true
	}
}

func knownWholesaler(known map[string]string) func(string) (string, bool) {
	return func(tag string) (string, bool) {
		canonical, ok := known[strings.ToLower(strings.TrimSpace(tag))]
		return canonical, ok
	}
}

func unitsPerParcel(tag string) (int, bool) {
	groups := unitLimitRe.FindStringSubmatch(tag)
	if groups == nil {
		return 0, false
	}
	limit, err := strconv.Atoi(groups[1])
	if err != nil || limit <= 0 {
		return 0, false
	}
	return limit, true
}

func phraseRestriction(phrases map[string]struct{}, restriction enums.ShippingRestriction) func(string) (enums.ShippingRestriction, bool) {
	return func(tag string) (enums.ShippingRestriction, bool) {
		if _, ok := phrases[compactPhrase(tag)]; ok {
			return restriction, true
		}
		return "", false
	}
}

// compactPhrase lowercases a tag, reads "+", "&" and "/" as "i" and drops
// whitespace, so "Paczkomaty  i Kurier" and "paczkomaty+kurier" compare equal.
func compactPhrase(tag string) string {
	phrase := joinerRe.ReplaceAllString(strings.ToLower(tag), "i")
	return whitespaceRe.ReplaceAllString(phrase, "")
}
