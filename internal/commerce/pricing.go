package commerce

import (
	"github.com/shopspring/decimal"

	"github.com/haider-deku/3d-marketplace/internal/domain"
)

// LineTotal is unitPrice * quantity in exact decimal arithmetic.
func LineTotal(unitPrice float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// Money converts a decimal amount back to the float used on the wire. Amounts are
// not rounded, so a total always equals the sum of its lines.
func Money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// ValidatePricing checks a product's pricing options: non-empty, known sizes,
// non-negative prices and no duplicate size.
func ValidatePricing(pricing []domain.ProductPricing) error {
	if len(pricing) == 0 {
		return Invalid("INVALID_PRICING", "Product must have at least one pricing option")
	}
	seen := make(map[string]bool, len(pricing))
	for _, opt := range pricing {
		if !domain.IsProductSize(opt.Size) {
			return Invalid("INVALID_PRICING", "Invalid size. Must be one of: small, medium, large")
		}
		if opt.Price < 0 {
			return Invalid("INVALID_PRICING", "Each pricing option must have a valid price (>= 0)")
		}
		if seen[opt.Size] {
			return Invalid("INVALID_PRICING", "Duplicate size found in pricing options")
		}
		seen[opt.Size] = true
	}
	return nil
}
