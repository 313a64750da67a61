// Package pricing implements the price/margin engine: pure functions that
// convert cost and time figures into sale prices, coverage contribution (DB)
// percentages, and per-hour profitability. No I/O.
package pricing

import "math"

// Category selects which domain default margin applies when neither an
// explicit override nor a product-specific margin is stored.
type Category string

const (
	CategoryProducts  Category = "products"
	CategoryMaterials Category = "materials"
)

// Domain default margins, used only when the catalog's global factors carry
// no value.
const (
	defaultProductMarginPercent  = 25.0
	defaultMaterialMarginPercent = 40.0
)

// Params are the knobs of one sale-price computation.
type Params struct {
	MarginPercent   float64
	DiscountPercent float64
	FixedMarkup     float64
	// RoundIncrement rounds the result up to the nearest multiple when
	// positive; zero disables rounding.
	RoundIncrement float64
}

// SalePrice derives a sale price from a cost price: discount first, then
// margin, then fixed markup, then optional round-up.
func SalePrice(costPrice float64, p Params) float64 {
	price := costPrice*(1-p.DiscountPercent/100)*(1+p.MarginPercent/100) + p.FixedMarkup
	return RoundUpTo(price, p.RoundIncrement)
}

// LineTotal computes quantity times unit price less a line discount.
func LineTotal(quantity, unitPrice, lineDiscountPercent float64) float64 {
	return quantity * unitPrice * (1 - lineDiscountPercent/100)
}

// DBPercent is the coverage contribution percentage, rounded to a whole
// percent. Defined as 0 when sale is not positive, never NaN.
func DBPercent(totalSale, totalCost float64) float64 {
	if totalSale <= 0 {
		return 0
	}
	return math.Round((totalSale - totalCost) / totalSale * 100)
}

// DBPerHour is the coverage contribution per labor hour. Defined as 0 when
// no hours were estimated.
func DBPerHour(totalSale, totalCost, laborHours float64) float64 {
	if laborHours <= 0 {
		return 0
	}
	return (totalSale - totalCost) / laborHours
}

// RoundUpTo rounds v up to the nearest positive multiple of increment.
func RoundUpTo(v, increment float64) float64 {
	if increment <= 0 {
		return v
	}
	return math.Ceil(v/increment) * increment
}

// ResolveMargin walks the margin fallback chain: explicit override, then the
// product-specific stored margin, then the category's domain default. It
// never resolves to zero by omission.
func ResolveMargin(override, stored *float64, cat Category, productDefault, materialDefault float64) float64 {
	if override != nil {
		return *override
	}
	if stored != nil {
		return *stored
	}
	switch cat {
	case CategoryMaterials:
		if materialDefault > 0 {
			return materialDefault
		}
		return defaultMaterialMarginPercent
	default:
		if productDefault > 0 {
			return productDefault
		}
		return defaultProductMarginPercent
	}
}
