package models

import "time"

type VoucherKind string

const (
	VoucherPercentage VoucherKind = "percentage"
	VoucherFixed      VoucherKind = "fixed"
	VoucherFreeWeight VoucherKind = "free_weight"
)

func (k VoucherKind) Valid() bool {
	switch k {
	case VoucherPercentage, VoucherFixed, VoucherFreeWeight:
		return true
	}
	return false
}

type Voucher struct {
	ID            uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string      `gorm:"uniqueIndex;not null"     json:"code"`
	Kind          VoucherKind `gorm:"not null"                 json:"kind"`
	DiscountValue *int64      `json:"discount_value,omitempty"`
	FreeWeightKg  *float64    `json:"free_weight_kg,omitempty"`
	MinimumOrder  int64       `gorm:"not null"                 json:"minimum_order"`
	MaxUsage      *int64      `json:"max_usage,omitempty"`
	UsedCount     int64       `gorm:"not null"                 json:"used_count"`
	ExpiryDate    time.Time   `gorm:"not null"                 json:"expiry_date"`
	IsActive      bool        `gorm:"not null"                 json:"is_active"`
	Description   string      `json:"description"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Exhausted reports whether the voucher has reached its usage cap.
func (v *Voucher) Exhausted() bool {
	return v.MaxUsage != nil && v.UsedCount >= *v.MaxUsage
}

// Snapshot copies the redemption terms so later edits of the voucher do not
// leak into existing claims.
func (v *Voucher) Snapshot() VoucherTerms {
	t := VoucherTerms{
		Code:         v.Code,
		Kind:         v.Kind,
		MinimumOrder: v.MinimumOrder,
		ExpiryDate:   v.ExpiryDate,
		Description:  v.Description,
	}
	if v.DiscountValue != nil {
		d := *v.DiscountValue
		t.DiscountValue = &d
	}
	if v.FreeWeightKg != nil {
		w := *v.FreeWeightKg
		t.FreeWeightKg = &w
	}
	return t
}

// VoucherTerms is the part of a voucher a claim holds on to.
type VoucherTerms struct {
	Code          string      `gorm:"not null" json:"code"`
	Kind          VoucherKind `gorm:"not null" json:"kind"`
	DiscountValue *int64      `json:"discount_value,omitempty"`
	FreeWeightKg  *float64    `json:"free_weight_kg,omitempty"`
	MinimumOrder  int64       `gorm:"not null" json:"minimum_order"`
	ExpiryDate    time.Time   `gorm:"not null" json:"expiry_date"`
	Description   string      `json:"description"`
}

type UserVoucherClaim struct {
	ID        uint         `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID    uint         `gorm:"uniqueIndex:idx_claim_user_voucher;not null" json:"user_id"`
	VoucherID uint         `gorm:"uniqueIndex:idx_claim_user_voucher;not null" json:"voucher_id"`
	Terms     VoucherTerms `gorm:"embedded;embeddedPrefix:terms_"              json:"voucher"`
	ClaimedAt time.Time    `gorm:"not null"                                    json:"claimed_at"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
	IsUsed    bool         `gorm:"not null;index"                              json:"is_used"`
}
