// Package costing implements the cost calculation used for interactive
// quotes and for recomputing the derived money fields of persisted
// estimates. All arithmetic is performed with shopspring decimals at full
// precision; rounding to two decimals happens only when values are
// serialized for presentation.
package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Default percentage buffer applied when the caller does not specify one.
var DefaultContingencyPercentage = decimal.NewFromFloat(10.00)

// Fixed presentation-only allocation of the base total.
var (
	materialsShare = decimal.NewFromFloat(0.60)
	laborShare     = decimal.NewFromFloat(0.30)
	equipmentShare = decimal.NewFromFloat(0.10)
)

var oneHundred = decimal.NewFromInt(100)

// LineItem is a custom cost line supplied with a quote request.
type LineItem struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Total returns quantity multiplied by unit price.
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Input holds the independent values a quote is derived from.
type Input struct {
	// BaseCostPerSqm is the project type's base rate. Must be >= 0.
	BaseCostPerSqm decimal.Decimal
	// CostMultiplier is the location's cost multiplier. Must be > 0.
	CostMultiplier decimal.Decimal
	// TotalArea in square meters. Must be > 0.
	TotalArea decimal.Decimal
	// ContingencyPercentage defaults to 10.00 when nil.
	ContingencyPercentage *decimal.Decimal
	// CustomItems are optional additional cost lines.
	CustomItems []LineItem
}

// Quote is the structured cost breakdown derived from an Input. Every field
// is computed; a Quote is never accepted as client input.
type Quote struct {
	TotalArea             decimal.Decimal
	BaseCostPerSqm        decimal.Decimal
	CostMultiplier        decimal.Decimal
	AdjustedCostPerSqm    decimal.Decimal
	BaseTotal             decimal.Decimal
	ContingencyPercentage decimal.Decimal
	ContingencyAmount     decimal.Decimal
	CustomItemsTotal      decimal.Decimal
	FinalTotal            decimal.Decimal
	Breakdown             Breakdown
}

// Breakdown is the fixed-ratio allocation of the base total used for
// presentation. It never feeds back into the other quote fields.
type Breakdown struct {
	Materials   decimal.Decimal
	Labor       decimal.Decimal
	Equipment   decimal.Decimal
	Contingency decimal.Decimal
	CustomItems decimal.Decimal
}

// InvalidInputError reports a violated calculator precondition.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// Calculate derives a Quote from the given input. It is a pure function:
// identical inputs always produce identical output.
func Calculate(in Input) (*Quote, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	contingencyPct := DefaultContingencyPercentage
	if in.ContingencyPercentage != nil {
		contingencyPct = *in.ContingencyPercentage
	}

	adjusted := in.BaseCostPerSqm.Mul(in.CostMultiplier)
	baseTotal := adjusted.Mul(in.TotalArea)
	contingency := baseTotal.Mul(contingencyPct).Div(oneHundred)

	customTotal := decimal.Zero
	for _, item := range in.CustomItems {
		customTotal = customTotal.Add(item.Total())
	}

	return &Quote{
		TotalArea:             in.TotalArea,
		BaseCostPerSqm:        in.BaseCostPerSqm,
		CostMultiplier:        in.CostMultiplier,
		AdjustedCostPerSqm:    adjusted,
		BaseTotal:             baseTotal,
		ContingencyPercentage: contingencyPct,
		ContingencyAmount:     contingency,
		CustomItemsTotal:      customTotal,
		FinalTotal:            baseTotal.Add(contingency).Add(customTotal),
		Breakdown: Breakdown{
			Materials:   baseTotal.Mul(materialsShare),
			Labor:       baseTotal.Mul(laborShare),
			Equipment:   baseTotal.Mul(equipmentShare),
			Contingency: contingency,
			CustomItems: customTotal,
		},
	}, nil
}

func validate(in Input) error {
	if in.TotalArea.LessThanOrEqual(decimal.Zero) {
		return &InvalidInputError{Field: "total_area", Reason: "must be greater than zero"}
	}
	if in.BaseCostPerSqm.IsNegative() {
		return &InvalidInputError{Field: "base_cost_per_sqm", Reason: "must not be negative"}
	}
	if in.CostMultiplier.LessThanOrEqual(decimal.Zero) {
		return &InvalidInputError{Field: "cost_multiplier", Reason: "must be greater than zero"}
	}
	if in.ContingencyPercentage != nil && in.ContingencyPercentage.IsNegative() {
		return &InvalidInputError{Field: "contingency_percentage", Reason: "must not be negative"}
	}
	for i, item := range in.CustomItems {
		if item.Quantity.IsNegative() {
			return &InvalidInputError{
				Field:  fmt.Sprintf("custom_items[%d].quantity", i),
				Reason: "must not be negative",
			}
		}
		if item.UnitPrice.IsNegative() {
			return &InvalidInputError{
				Field:  fmt.Sprintf("custom_items[%d].unit_price", i),
				Reason: "must not be negative",
			}
		}
	}
	return nil
}
