package costing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculateWorkedExample(t *testing.T) {
	quote, err := Calculate(Input{
		BaseCostPerSqm:        dec("150.00"),
		CostMultiplier:        dec("1.20"),
		TotalArea:             dec("200"),
		ContingencyPercentage: decPtr("10.00"),
	})
	require.NoError(t, err)

	assert.True(t, quote.AdjustedCostPerSqm.Equal(dec("180.00")), "adjusted = %s", quote.AdjustedCostPerSqm)
	assert.True(t, quote.BaseTotal.Equal(dec("36000.00")), "base total = %s", quote.BaseTotal)
	assert.True(t, quote.ContingencyAmount.Equal(dec("3600.00")), "contingency = %s", quote.ContingencyAmount)
	assert.True(t, quote.CustomItemsTotal.IsZero())
	assert.True(t, quote.FinalTotal.Equal(dec("39600.00")), "final = %s", quote.FinalTotal)
}

func TestCalculateDefaultContingency(t *testing.T) {
	quote, err := Calculate(Input{
		BaseCostPerSqm: dec("100"),
		CostMultiplier: dec("1"),
		TotalArea:      dec("10"),
	})
	require.NoError(t, err)

	assert.True(t, quote.ContingencyPercentage.Equal(dec("10.00")))
	assert.True(t, quote.ContingencyAmount.Equal(dec("100")))
	assert.True(t, quote.FinalTotal.Equal(dec("1100")))
}

func TestCalculateCustomItems(t *testing.T) {
	quote, err := Calculate(Input{
		BaseCostPerSqm:        dec("100"),
		CostMultiplier:        dec("1"),
		TotalArea:             dec("10"),
		ContingencyPercentage: decPtr("0"),
		CustomItems: []LineItem{
			{Quantity: dec("3"), UnitPrice: dec("250.50")},
			{Quantity: dec("1.5"), UnitPrice: dec("100")},
		},
	})
	require.NoError(t, err)

	assert.True(t, quote.CustomItemsTotal.Equal(dec("901.50")), "custom total = %s", quote.CustomItemsTotal)
	assert.True(t, quote.FinalTotal.Equal(dec("1901.50")))
	assert.True(t, quote.Breakdown.CustomItems.Equal(dec("901.50")))
}

func TestCalculateBreakdownShares(t *testing.T) {
	quote, err := Calculate(Input{
		BaseCostPerSqm: dec("150.00"),
		CostMultiplier: dec("1.20"),
		TotalArea:      dec("200"),
	})
	require.NoError(t, err)

	assert.True(t, quote.Breakdown.Materials.Equal(dec("21600.00")))
	assert.True(t, quote.Breakdown.Labor.Equal(dec("10800.00")))
	assert.True(t, quote.Breakdown.Equipment.Equal(dec("3600.00")))

	sum := quote.Breakdown.Materials.Add(quote.Breakdown.Labor).Add(quote.Breakdown.Equipment)
	assert.True(t, sum.Equal(quote.BaseTotal), "shares must sum to the base total")
}

func TestCalculateZeroBaseCost(t *testing.T) {
	quote, err := Calculate(Input{
		BaseCostPerSqm: decimal.Zero,
		CostMultiplier: dec("1.5"),
		TotalArea:      dec("50"),
	})
	require.NoError(t, err)
	assert.True(t, quote.FinalTotal.IsZero())
}

func TestCalculateInvalidInputs(t *testing.T) {
	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{
			name:  "zero area",
			in:    Input{BaseCostPerSqm: dec("100"), CostMultiplier: dec("1"), TotalArea: decimal.Zero},
			field: "total_area",
		},
		{
			name:  "negative area",
			in:    Input{BaseCostPerSqm: dec("100"), CostMultiplier: dec("1"), TotalArea: dec("-5")},
			field: "total_area",
		},
		{
			name:  "negative base cost",
			in:    Input{BaseCostPerSqm: dec("-1"), CostMultiplier: dec("1"), TotalArea: dec("10")},
			field: "base_cost_per_sqm",
		},
		{
			name:  "zero multiplier",
			in:    Input{BaseCostPerSqm: dec("100"), CostMultiplier: decimal.Zero, TotalArea: dec("10")},
			field: "cost_multiplier",
		},
		{
			name: "negative contingency",
			in: Input{
				BaseCostPerSqm:        dec("100"),
				CostMultiplier:        dec("1"),
				TotalArea:             dec("10"),
				ContingencyPercentage: decPtr("-1"),
			},
			field: "contingency_percentage",
		},
		{
			name: "negative item quantity",
			in: Input{
				BaseCostPerSqm: dec("100"),
				CostMultiplier: dec("1"),
				TotalArea:      dec("10"),
				CustomItems:    []LineItem{{Quantity: dec("-1"), UnitPrice: dec("5")}},
			},
			field: "custom_items[0].quantity",
		},
		{
			name: "negative item price",
			in: Input{
				BaseCostPerSqm: dec("100"),
				CostMultiplier: dec("1"),
				TotalArea:      dec("10"),
				CustomItems:    []LineItem{{Quantity: dec("1"), UnitPrice: dec("-5")}},
			},
			field: "custom_items[0].unit_price",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(tc.in)
			require.Error(t, err)

			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestCalculateIsPure(t *testing.T) {
	in := Input{
		BaseCostPerSqm:        dec("99.99"),
		CostMultiplier:        dec("1.07"),
		TotalArea:             dec("123.45"),
		ContingencyPercentage: decPtr("7.5"),
		CustomItems:           []LineItem{{Quantity: dec("2"), UnitPrice: dec("10")}},
	}

	first, err := Calculate(in)
	require.NoError(t, err)
	second, err := Calculate(in)
	require.NoError(t, err)

	assert.True(t, first.FinalTotal.Equal(second.FinalTotal))
	assert.True(t, first.AdjustedCostPerSqm.Equal(second.AdjustedCostPerSqm))
	assert.True(t, first.ContingencyAmount.Equal(second.ContingencyAmount))
}
