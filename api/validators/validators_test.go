package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/sweetshop-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type sampleRequest struct {
	Name  string           `json:"name" validate:"required"`
	Price *decimal.Decimal `json:"price" validate:"required"`
}

func (sampleRequest) ValidationMessage() string { return "All fields required" }

type plainRequest struct {
	Email string `json:"email" validate:"required"`
}

func decode(t *testing.T, body string, dest any) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return DecodeJSONBody(req, dest)
}

func TestDecodeJSONBodyAcceptsNumbersAndNumericStrings(t *testing.T) {
	var a sampleRequest
	if err := decode(t, `{"name":"Ladoo","price":2.5}`, &a); err != nil {
		t.Fatalf("decode number: %v", err)
	}
	var b sampleRequest
	if err := decode(t, `{"name":"Ladoo","price":"2.5","extra":true}`, &b); err != nil {
		t.Fatalf("decode string: %v", err)
	}
	if !a.Price.Equal(*b.Price) {
		t.Fatalf("expected equal prices, got %s and %s", a.Price, b.Price)
	}
}

func TestDecodeJSONBodyUsesRequestMessage(t *testing.T) {
	var req sampleRequest
	err := decode(t, `{"name":"Ladoo"}`, &req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "All fields required" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["price"] != "is required" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestDecodeJSONBodyEmptyBodyRunsValidation(t *testing.T) {
	var req sampleRequest
	err := decode(t, ``, &req)
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "All fields required" {
		t.Fatalf("expected custom validation message, got %v", err)
	}
}

func TestDecodeJSONBodyDefaultMessageAndMalformed(t *testing.T) {
	var req plainRequest
	err := decode(t, `{}`, &req)
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "validation failed" {
		t.Fatalf("expected default message, got %v", err)
	}

	err = decode(t, `{"email":`, &req)
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "invalid request body" {
		t.Fatalf("expected invalid body, got %v", err)
	}
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?minPrice=5&maxPrice=abc&empty=", nil)

	got, err := ParseQueryDecimal(req, "minPrice")
	if err != nil || got == nil || !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected minPrice %v %v", got, err)
	}
	if got, err := ParseQueryDecimal(req, "empty"); err != nil || got != nil {
		t.Fatalf("expected nil for empty value, got %v %v", got, err)
	}
	if got, err := ParseQueryDecimal(req, "missing"); err != nil || got != nil {
		t.Fatalf("expected nil for missing value, got %v %v", got, err)
	}
	if _, err := ParseQueryDecimal(req, "maxPrice"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseIDParam(t *testing.T) {
	cases := map[string]bool{"42": true, "0": false, "-3": false, "abc": false, "": false}
	for raw, ok := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req = req.WithContext(contextWithRoute(req, rctx))

		id, err := ParseIDParam(req, "id", "invalid sweet id")
		if ok && (err != nil || id != 42) {
			t.Fatalf("%q: unexpected %d %v", raw, id, err)
		}
		if !ok {
			typed := pkgerrors.As(err)
			if typed == nil || typed.Message() != "invalid sweet id" {
				t.Fatalf("%q: expected invalid sweet id, got %v", raw, err)
			}
		}
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc.def"); err != nil || tok != "abc.def" {
		t.Fatalf("unexpected %q %v", tok, err)
	}
	if tok, err := BearerToken("bearer   xyz "); err != nil || tok != "xyz" {
		t.Fatalf("unexpected %q %v", tok, err)
	}
	for _, bad := range []string{"", "Bearer", "Bearer   ", "Basic abc", "abc"} {
		if _, err := BearerToken(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

func TestQueryRawKeepsWhitespace(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/sweets/search?name=a%20&category=%20Fried%20", nil)
	if got := QueryRaw(req, "name"); got != "a " {
		t.Fatalf("expected raw value %q, got %q", "a ", got)
	}
	if got := QueryString(req, "category"); got != "Fried" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := QueryRaw(req, "missing"); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}
