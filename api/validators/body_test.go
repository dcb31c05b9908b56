package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/shipcalc-backend/pkg/errors"
)

type testLine struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type testCart struct {
	Items []testLine `json:"items" validate:"required,max=3,dive"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[{"variantId":"v1","quantity":2}]}`))

	var dest testCart
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dest.Items) != 1 || dest.Items[0].Quantity != 2 {
		t.Fatalf("unexpected decode: %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[],"coupon":"x"}`))

	var dest testCart
	err := DecodeJSONBody(req, &dest)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsNestedFieldPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[{"variantId":"v1","quantity":1},{"variantId":"","quantity":0}]}`))

	var dest testCart
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", typed.Details())
	}
	if details["items[1].variantId"] != "is required" {
		t.Fatalf("expected variantId detail, got %v", details)
	}
	if details["items[1].quantity"] != "must be at least 1" {
		t.Fatalf("expected quantity detail, got %v", details)
	}
}
