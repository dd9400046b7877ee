package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/models"
)

const DefaultKiloanPrice int64 = 10000

// Per-order input limits. Anything above them is rejected before pricing.
const (
	MaxWeightKg = 1000.0
	MaxQuantity = 10000
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// PriceList holds the catalog prices in rupiah.
type PriceList struct {
	KiloanPerKg int64                          `json:"kiloan_per_kg"`
	Satuan      map[models.PieceCategory]int64 `json:"satuan"`
}

func DefaultPriceList() PriceList {
	return PriceList{
		KiloanPerKg: DefaultKiloanPrice,
		Satuan: map[models.PieceCategory]int64{
			models.CategoryShirt:  15000,
			models.CategoryPants:  20000,
			models.CategoryJacket: 30000,
			models.CategoryDress:  25000,
			models.CategoryOthers: 20000,
		},
	}
}

type PieceItem struct {
	Name     string               `json:"name"`
	Category models.PieceCategory `json:"category"`
	Quantity int                  `json:"quantity"`
}

// LineItems describes what is being washed: a weight for kiloan orders or a
// list of pieces for satuan orders, never both.
type LineItems struct {
	Type     models.PackageType `json:"type"`
	WeightKg float64            `json:"weight_kg,omitempty"`
	Pieces   []PieceItem        `json:"items,omitempty"`
}

type Calculator struct {
	Prices PriceList
}

func NewCalculator(prices PriceList) *Calculator {
	if prices.KiloanPerKg <= 0 {
		prices.KiloanPerKg = DefaultKiloanPrice
	}
	if prices.Satuan == nil {
		prices.Satuan = DefaultPriceList().Satuan
	}
	return &Calculator{Prices: prices}
}

// WeightPrice prices kg of laundry at the kiloan rate, rounded to whole
// rupiah. Amounts past the int64 range saturate.
func (c *Calculator) WeightPrice(kg float64) int64 {
	if math.IsNaN(kg) || kg <= 0 {
		return 0
	}
	if math.IsInf(kg, 1) {
		return math.MaxInt64
	}
	d := decimal.NewFromFloat(kg).Mul(decimal.NewFromInt(c.Prices.KiloanPerKg)).Round(0)
	if d.GreaterThan(maxAmount) {
		return math.MaxInt64
	}
	return d.IntPart()
}

// amount converts d back to rupiah, failing when it leaves the int64 range.
func amount(d decimal.Decimal) (int64, error) {
	if d.GreaterThan(maxAmount) || d.IsNegative() {
		return 0, fmt.Errorf("%w: amount out of range", domain.ErrInvalidOrderInput)
	}
	return d.IntPart(), nil
}

func (c *Calculator) UnitPrice(category models.PieceCategory) (int64, error) {
	p, ok := c.Prices.Satuan[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}
	return p, nil
}

// PieceLines prices every piece and returns them as order items.
func (c *Calculator) PieceLines(pieces []PieceItem) ([]models.OrderItem, error) {
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrInvalidOrderInput)
	}

	lines := make([]models.OrderItem, 0, len(pieces))
	for i, p := range pieces {
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be > 0", domain.ErrInvalidOrderInput, i+1)
		}
		if p.Quantity > MaxQuantity {
			return nil, fmt.Errorf("%w: item %d quantity exceeds %d", domain.ErrInvalidOrderInput, i+1, MaxQuantity)
		}
		unit, err := c.UnitPrice(p.Category)
		if err != nil {
			return nil, err
		}
		total, err := amount(decimal.NewFromInt(unit).Mul(decimal.NewFromInt(int64(p.Quantity))))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = string(p.Category)
		}
		lines = append(lines, models.OrderItem{
			Name:      name,
			Category:  p.Category,
			Quantity:  p.Quantity,
			UnitPrice: unit,
			LineTotal: total,
		})
	}
	return lines, nil
}

func (c *Calculator) ComputeBasePrice(items LineItems) (int64, error) {
	switch items.Type {
	case models.PackageKiloan:
		if err := validWeight(items); err != nil {
			return 0, err
		}
		return amount(decimal.NewFromFloat(items.WeightKg).Mul(decimal.NewFromInt(c.Prices.KiloanPerKg)).Round(0))
	case models.PackageSatuan:
		if items.WeightKg != 0 {
			return 0, fmt.Errorf("%w: satuan orders carry no weight", domain.ErrInvalidOrderInput)
		}
		lines, err := c.PieceLines(items.Pieces)
		if err != nil {
			return 0, err
		}
		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(decimal.NewFromInt(l.LineTotal))
		}
		return amount(total)
	default:
		return 0, fmt.Errorf("%w: unknown package type %q", domain.ErrInvalidOrderInput, items.Type)
	}
}

func validWeight(items LineItems) error {
	w := items.WeightKg
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return fmt.Errorf("%w: weight must be > 0", domain.ErrInvalidOrderInput)
	}
	if w > MaxWeightKg {
		return fmt.Errorf("%w: weight exceeds %g kg", domain.ErrInvalidOrderInput, MaxWeightKg)
	}
	if len(items.Pieces) > 0 {
		return fmt.Errorf("%w: kiloan orders carry no items", domain.ErrInvalidOrderInput)
	}
	return nil
}
