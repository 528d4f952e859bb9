package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"

	StatusDraft   = "draft"
	StatusPending = "pending"

	MethodCOD    = "cod"
	MethodWallet = "wallet"
	MethodStripe = "stripe"
)

// OrderProduct is an immutable line-item snapshot taken at order creation,
// decoupled from live catalog prices.
type OrderProduct struct {
	Name  string  `json:"name"`
	Qty   int64   `json:"qty"`
	Price float64 `json:"price"`
}

// ContactInfo is a billing or shipping snapshot, not a reference to a live
// customer profile.
type ContactInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	House    string `json:"house,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode,omitempty"`
	Country  string `json:"country,omitempty"`
}

type Delivery struct {
	Type string  `json:"type"`
	Cost float64 `json:"cost"`
	Area string  `json:"area,omitempty"`
}

type Coupon struct {
	Code     string  `json:"code,omitempty"`
	Discount float64 `json:"discount,omitempty"`
}

type Order struct {
	ID              snowflake.ID                         `gorm:"primaryKey" json:"id"`
	OrderCode       string                               `gorm:"uniqueIndex;not null" json:"orderCode"`
	StripeSessionID *string                              `gorm:"uniqueIndex" json:"sessionId,omitempty"`
	Products        datatypes.JSONType[[]OrderProduct]   `gorm:"not null" json:"products"`
	BillingInfo     datatypes.JSONType[ContactInfo]      `gorm:"not null" json:"billingInfo"`
	ShippingInfo    datatypes.JSONType[ContactInfo]      `json:"shippingInfo"`
	DeliveryInfo    datatypes.JSONType[Delivery]         `json:"deliveryInfo"`
	Coupon          datatypes.JSONType[Coupon]           `json:"coupon"`
	PaymentMethod   string                               `gorm:"not null" json:"paymentMethod"`
	PaymentStatus   string                               `gorm:"not null;default:unpaid" json:"paymentStatus"`
	Status          string                               `gorm:"not null;default:draft" json:"status"`
	TotalPrice      float64                              `gorm:"not null" json:"totalPrice"`
	Tax             float64                              `gorm:"not null" json:"tax"`
	Vat             float64                              `gorm:"not null" json:"vat"`
	PayAmount       float64                              `gorm:"not null" json:"payAmount"`
	ReceiptRef      *string                              `json:"receiptRef,omitempty"`
	PaidAt          *time.Time                           `json:"paidAt,omitempty"`
	CreatedAt       time.Time                            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time                            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// PublicView strips the internal id for session-based lookups exposed to the
// client-facing success page.
type PublicView struct {
	OrderCode     string                             `json:"orderCode"`
	Products      datatypes.JSONType[[]OrderProduct] `json:"products"`
	BillingInfo   datatypes.JSONType[ContactInfo]    `json:"billingInfo"`
	ShippingInfo  datatypes.JSONType[ContactInfo]    `json:"shippingInfo"`
	DeliveryInfo  datatypes.JSONType[Delivery]       `json:"deliveryInfo"`
	Coupon        datatypes.JSONType[Coupon]         `json:"coupon"`
	PaymentMethod string                             `json:"paymentMethod"`
	PaymentStatus string                             `json:"paymentStatus"`
	Status        string                             `json:"status"`
	TotalPrice    float64                            `json:"totalPrice"`
	Tax           float64                            `json:"tax"`
	Vat           float64                            `json:"vat"`
	PayAmount     float64                            `json:"payAmount"`
	ReceiptRef    *string                            `json:"receiptRef,omitempty"`
	PaidAt        *time.Time                         `json:"paidAt,omitempty"`
	CreatedAt     time.Time                          `json:"createdAt"`
}

// Public returns the reduced projection of the order.
func (o *Order) Public() PublicView {
	return PublicView{
		OrderCode:     o.OrderCode,
		Products:      o.Products,
		BillingInfo:   o.BillingInfo,
		ShippingInfo:  o.ShippingInfo,
		DeliveryInfo:  o.DeliveryInfo,
		Coupon:        o.Coupon,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Status:        o.Status,
		TotalPrice:    o.TotalPrice,
		Tax:           o.Tax,
		Vat:           o.Vat,
		PayAmount:     o.PayAmount,
		ReceiptRef:    o.ReceiptRef,
		PaidAt:        o.PaidAt,
		CreatedAt:     o.CreatedAt,
	}
}
