package models

import (
	"strings"
	"unicode/utf8"
)

// NamePrefixLength is how many leading characters of an expected product name
// must match a rendered cart line name. The cart view truncates long names.
const NamePrefixLength = 10

// CartLineItem is one cart row as rendered by the storefront
type CartLineItem struct {
	Name     string
	Quantity int
	Color    string
	Amount   float64
}

// CartSummary holds the cart-wide totals shown by the storefront
type CartSummary struct {
	TotalQuantity int
	TotalAmount   float64
}

// MatchesName reports whether a rendered (possibly truncated) cart line name
// belongs to the expected product name. Comparison is case-insensitive and
// uses the first NamePrefixLength characters of the expected name.
func MatchesName(rendered, expected string) bool {
	if expected == "" {
		return false
	}

	prefix := expected
	if utf8.RuneCountInString(expected) > NamePrefixLength {
		prefix = string([]rune(expected)[:NamePrefixLength])
	}

	return strings.HasPrefix(strings.ToUpper(rendered), strings.ToUpper(prefix))
}
