package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/sweetshop-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// QueryString returns the trimmed query value for key, or "" when absent.
func QueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// QueryRaw returns the query value for key exactly as sent.
func QueryRaw(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// ParseQueryDecimal parses an optional numeric query value. Absent or empty
// values yield nil.
func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := QueryString(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a number").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}
