package transport

import (
	"time"

	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/pricing"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type CreateVoucherRequest struct {
	Code          string             `json:"code"`
	Kind          models.VoucherKind `json:"kind"`
	DiscountValue *int64             `json:"discount_value"`
	FreeWeightKg  *float64           `json:"free_weight_kg"`
	MinimumOrder  int64              `json:"minimum_order"`
	MaxUsage      *int64             `json:"max_usage"`
	ExpiryDate    time.Time          `json:"expiry_date"`
	IsActive      *bool              `json:"is_active"`
	Description   string             `json:"description"`
}

type PatchVoucherRequest struct {
	DiscountValue *int64     `json:"discount_value"`
	FreeWeightKg  *float64   `json:"free_weight_kg"`
	MinimumOrder  *int64     `json:"minimum_order"`
	MaxUsage      *int64     `json:"max_usage"`
	ClearMaxUsage bool       `json:"clear_max_usage"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	IsActive      *bool      `json:"is_active"`
	Description   *string    `json:"description"`
}

type ClaimVoucherRequest struct {
	Voucher string `json:"voucher"`
}

type ValidateClaimRequest struct {
	OrderAmount int64 `json:"order_amount"`
}

type QuoteRequest struct {
	pricing.LineItems
	VoucherClaimID *uint `json:"voucher_claim_id"`
}

type CreateOrderRequest struct {
	pricing.LineItems
	Address        string               `json:"address"`
	Phone          string               `json:"phone"`
	VoucherClaimID *uint                `json:"voucher_claim_id"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
	PickupDate     *time.Time           `json:"pickup_date"`
	DeliveryDate   *time.Time           `json:"delivery_date"`
	Notes          string               `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}
