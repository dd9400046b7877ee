package models

import "time"

type PackageType string

const (
	PackageKiloan PackageType = "kiloan"
	PackageSatuan PackageType = "satuan"
)

type PieceCategory string

const (
	CategoryShirt  PieceCategory = "shirt"
	CategoryPants  PieceCategory = "pants"
	CategoryJacket PieceCategory = "jacket"
	CategoryDress  PieceCategory = "dress"
	CategoryOthers PieceCategory = "others"
)

type PaymentMethod string

const (
	PaymentManual PaymentMethod = "manual"
	PaymentQRIS   PaymentMethod = "qris"
	PaymentVA     PaymentMethod = "va"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPending, PaymentPaid:
		return true
	}
	return false
}

type Order struct {
	ID             uint          `gorm:"primaryKey;autoIncrement"              json:"id"`
	ClientID       uint          `gorm:"index;not null"                        json:"client_id"`
	ClientName     string        `gorm:"not null"                              json:"client_name"`
	ClientEmail    string        `json:"client_email"`
	ClientPhone    string        `json:"client_phone"`
	Address        string        `gorm:"not null"                              json:"address"`
	PackageType    PackageType   `gorm:"not null"                              json:"package_type"`
	WeightKg       *float64      `json:"weight_kg,omitempty"`
	Items          []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	OriginalPrice  int64         `gorm:"not null"                              json:"original_price"`
	VoucherID      *uint         `json:"voucher_id,omitempty"`
	VoucherClaimID *uint         `json:"voucher_claim_id,omitempty"`
	VoucherCode    string        `json:"voucher_code,omitempty"`
	DiscountAmount int64         `gorm:"not null"                              json:"discount_amount"`
	TotalPrice     int64         `gorm:"not null"                              json:"total_price"`
	Status         OrderStatus   `gorm:"index;not null"                        json:"status"`
	PaymentMethod  PaymentMethod `gorm:"not null"                              json:"payment_method"`
	PaymentStatus  PaymentStatus `gorm:"not null"                              json:"payment_status"`
	PickupDate     time.Time     `gorm:"not null"                              json:"pickup_date"`
	DeliveryDate   *time.Time    `json:"delivery_date,omitempty"`
	Notes          string        `json:"notes"`
	CreatedAt      time.Time     `gorm:"index"                                 json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type OrderItem struct {
	ID        uint          `gorm:"primaryKey"                json:"id"`
	OrderID   uint          `gorm:"index;not null"            json:"order_id"`
	Name      string        `gorm:"not null"                  json:"name"`
	Category  PieceCategory `gorm:"not null"                  json:"category"`
	Quantity  int           `gorm:"not null;check:quantity>0" json:"quantity"`
	UnitPrice int64         `gorm:"not null"                  json:"unit_price"`
	LineTotal int64         `gorm:"not null"                  json:"line_total"`
}
