// Package validation provides field-level request validation collected
// into a violations map that handlers return as error details.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Required flags empty string fields.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Email does a minimal shape check; real verification happens at delivery.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	at := strings.Index(value, "@")
	if at < 1 || at == len(value)-1 || strings.ContainsAny(value, " \t") {
		v[field] = "invalid_email"
	}
}

// PositiveInt flags values that must be strictly greater than zero.
func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

// NonNegativeDecimal flags negative monetary values.
func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

// DecimalRange flags values outside [min, max].
func DecimalRange(field string, val, min, max decimal.Decimal, v Violations) {
	if val.LessThan(min) || val.GreaterThan(max) {
		v[field] = "out_of_range"
	}
}
