package discount

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/pricing"
)

type Result struct {
	DiscountAmount int64 `json:"discount_amount"`
	FinalAmount    int64 `json:"final_amount"`
}

// Calculator turns voucher terms into a discount. It shares the kiloan rate
// with the pricing calculator so free-weight vouchers stay consistent with
// order prices.
type Calculator struct {
	Pricing *pricing.Calculator
}

func NewCalculator(p *pricing.Calculator) *Calculator {
	return &Calculator{Pricing: p}
}

// ComputeDiscount never rejects: a nil claim or unknown kind yields no
// discount. Callers validate the claim first.
func (c *Calculator) ComputeDiscount(claim *models.UserVoucherClaim, amount int64) Result {
	if claim == nil {
		return Result{FinalAmount: amount}
	}
	return c.Apply(claim.Terms, amount)
}

func (c *Calculator) Apply(terms models.VoucherTerms, amount int64) Result {
	var d int64
	switch terms.Kind {
	case models.VoucherPercentage:
		if terms.DiscountValue != nil {
			d = decimal.NewFromInt(amount).
				Mul(decimal.NewFromInt(*terms.DiscountValue)).
				Div(decimal.NewFromInt(100)).
				Floor().
				IntPart()
		}
	case models.VoucherFixed:
		if terms.DiscountValue != nil {
			d = *terms.DiscountValue
		}
	case models.VoucherFreeWeight:
		if terms.FreeWeightKg != nil {
			d = c.Pricing.WeightPrice(*terms.FreeWeightKg)
		}
	}
	if d < 0 {
		d = 0
	}

	final := amount - d
	if final < 0 {
		final = 0
	}
	return Result{DiscountAmount: d, FinalAmount: final}
}
