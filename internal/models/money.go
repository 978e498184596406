package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// CurrencySymbol is the symbol the storefront prefixes amounts with
const CurrencySymbol = "$"

// ParseAmount parses a rendered currency value such as "$1,799.00"
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, CurrencySymbol, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("no amount in %q", raw)
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// FormatUSD renders an amount the way the storefront does, e.g. "$3,179.97"
func FormatUSD(amount float64) string {
	return CurrencySymbol + humanize.FormatFloat("#,###.##", amount)
}
