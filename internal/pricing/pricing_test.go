package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/models"
)

func TestComputeBasePriceWeight(t *testing.T) {
	c := NewCalculator(DefaultPriceList())

	amount, err := c.ComputeBasePrice(LineItems{Type: models.PackageKiloan, WeightKg: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 50000, amount)

	amount, err = c.ComputeBasePrice(LineItems{Type: models.PackageKiloan, WeightKg: 2.5})
	require.NoError(t, err)
	assert.EqualValues(t, 25000, amount)
}

func TestComputeBasePricePieces(t *testing.T) {
	c := NewCalculator(DefaultPriceList())

	amount, err := c.ComputeBasePrice(LineItems{
		Type: models.PackageSatuan,
		Pieces: []PieceItem{
			{Name: "Kemeja", Category: models.CategoryShirt, Quantity: 2},
			{Name: "Jas", Category: models.CategoryJacket, Quantity: 1},
			{Category: models.CategoryDress, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2*15000+30000+3*25000, amount)
}

func TestComputeBasePriceRejectsBadInput(t *testing.T) {
	c := NewCalculator(DefaultPriceList())

	tests := []struct {
		name  string
		items LineItems
		want  error
	}{
		{"zero weight", LineItems{Type: models.PackageKiloan}, domain.ErrInvalidOrderInput},
		{"negative weight", LineItems{Type: models.PackageKiloan, WeightKg: -1}, domain.ErrInvalidOrderInput},
		{"empty pieces", LineItems{Type: models.PackageSatuan}, domain.ErrInvalidOrderInput},
		{"zero quantity", LineItems{Type: models.PackageSatuan, Pieces: []PieceItem{{Category: models.CategoryShirt}}}, domain.ErrInvalidOrderInput},
		{"unknown category", LineItems{Type: models.PackageSatuan, Pieces: []PieceItem{{Category: "socks", Quantity: 1}}}, domain.ErrInvalidCategory},
		{"unknown type", LineItems{Type: "express", WeightKg: 1}, domain.ErrInvalidOrderInput},
		{"mixed variants", LineItems{Type: models.PackageKiloan, WeightKg: 1, Pieces: []PieceItem{{Category: models.CategoryShirt, Quantity: 1}}}, domain.ErrInvalidOrderInput},
		{"huge weight", LineItems{Type: models.PackageKiloan, WeightKg: 1e16}, domain.ErrInvalidOrderInput},
		{"weight above limit", LineItems{Type: models.PackageKiloan, WeightKg: MaxWeightKg + 0.5}, domain.ErrInvalidOrderInput},
		{"huge quantity", LineItems{Type: models.PackageSatuan, Pieces: []PieceItem{{Category: models.CategoryShirt, Quantity: 1152921504606846976}}}, domain.ErrInvalidOrderInput},
		{"quantity above limit", LineItems{Type: models.PackageSatuan, Pieces: []PieceItem{{Category: models.CategoryShirt, Quantity: MaxQuantity + 1}}}, domain.ErrInvalidOrderInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ComputeBasePrice(tt.items)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPieceLinesDefaultsName(t *testing.T) {
	c := NewCalculator(DefaultPriceList())

	lines, err := c.PieceLines([]PieceItem{{Category: models.CategoryPants, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "pants", lines[0].Name)
	assert.EqualValues(t, 20000, lines[0].UnitPrice)
	assert.EqualValues(t, 40000, lines[0].LineTotal)
}

func TestNewCalculatorFillsDefaults(t *testing.T) {
	c := NewCalculator(PriceList{})
	assert.EqualValues(t, DefaultKiloanPrice, c.WeightPrice(1))

	p, err := c.UnitPrice(models.CategoryOthers)
	require.NoError(t, err)
	assert.EqualValues(t, 20000, p)
}

func TestComputeBasePriceDetectsOverflow(t *testing.T) {
	c := NewCalculator(PriceList{
		KiloanPerKg: math.MaxInt64 / 2,
		Satuan:      map[models.PieceCategory]int64{models.CategoryJacket: math.MaxInt64 / 3},
	})

	_, err := c.ComputeBasePrice(LineItems{Type: models.PackageKiloan, WeightKg: 3})
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	_, err = c.ComputeBasePrice(LineItems{Type: models.PackageSatuan, Pieces: []PieceItem{{Category: models.CategoryJacket, Quantity: 4}}})
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	_, err = c.ComputeBasePrice(LineItems{Type: models.PackageSatuan, Pieces: []PieceItem{
		{Category: models.CategoryJacket, Quantity: 2},
		{Category: models.CategoryJacket, Quantity: 2},
	}})
	require.ErrorIs(t, err, domain.ErrInvalidOrderInput)

	assert.Equal(t, int64(math.MaxInt64), c.WeightPrice(3))
}

func TestComputeBasePriceAtLimits(t *testing.T) {
	c := NewCalculator(DefaultPriceList())

	amount, err := c.ComputeBasePrice(LineItems{Type: models.PackageKiloan, WeightKg: MaxWeightKg})
	require.NoError(t, err)
	assert.EqualValues(t, 10_000_000, amount)

	amount, err = c.ComputeBasePrice(LineItems{Type: models.PackageSatuan, Pieces: []PieceItem{{Category: models.CategoryShirt, Quantity: MaxQuantity}}})
	require.NoError(t, err)
	assert.EqualValues(t, 150_000_000, amount)
}
