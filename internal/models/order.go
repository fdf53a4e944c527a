package models

import "time"

// OrderStatus is the lifecycle state of a single order line.
type OrderStatus string

const (
	StatusReceived        OrderStatus = "received"
	StatusProcessing      OrderStatus = "processing"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusReturned        OrderStatus = "returned"
	StatusReturnRequested OrderStatus = "return_requested"
	StatusReturnApproved  OrderStatus = "return_approved"
	StatusReturnRejected  OrderStatus = "return_rejected"
)

// AllOrderStatuses lists every declared status, for admin direct updates.
var AllOrderStatuses = []OrderStatus{
	StatusReceived, StatusProcessing, StatusDelivered, StatusCancelled,
	StatusReturned, StatusReturnRequested, StatusReturnApproved, StatusReturnRejected,
}

// Valid reports whether s is one of the declared statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// orderTransitions is the legal transition table for customer- and
// system-driven status changes. Admin direct updates bypass it
// deliberately (they record external fulfillment truth). Terminal states
// have no outgoing edges except delivered, which can still enter the
// return flow within the return window.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusReceived:        {StatusProcessing, StatusCancelled, StatusDelivered, StatusReturnRequested},
	StatusProcessing:      {StatusCancelled, StatusDelivered, StatusReturnRequested},
	StatusDelivered:       {StatusReturnRequested},
	StatusReturnRequested: {StatusReturnApproved, StatusReturnRejected},
	StatusReturnApproved:  {StatusReturned},
}

// CanTransition reports whether moving from s to target is a legal
// lifecycle transition.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// PaymentMethod names the three supported payment paths.
type PaymentMethod string

const (
	PaymentGateway        PaymentMethod = "gateway"
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentWallet         PaymentMethod = "wallet"
)

// Order is one line of a checkout: a single product at the quantity and
// unit price it was bought for. All lines of one checkout share OrderID
// and PaymentID. Immutable after placement except for status, rating and
// timestamp fields.
//
// Price is the offer-discounted unit price at purchase time.
// CouponDiscount is this line's apportioned share of the checkout's
// coupon discount.
type Order struct {
	ID             string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID      string        `json:"product_id" gorm:"type:varchar(36);index"`
	Product        Product       `json:"product" gorm:"foreignKey:ProductID"`
	CustomerID     string        `json:"customer_id" gorm:"type:varchar(36);index"`
	Quantity       int           `json:"quantity"`
	Price          int64         `json:"price"`
	Address        string        `json:"address"`
	Phone          string        `json:"phone"`
	Status         OrderStatus   `json:"status" gorm:"type:varchar(20);index"`
	CouponDiscount int64         `json:"coupon_discount"`
	Rating         int           `json:"rating" validate:"gte=0,lte=5"`
	PaymentMethod  PaymentMethod `json:"payment_method" gorm:"type:varchar(10)"`
	OrderID        string        `json:"order_id" gorm:"type:varchar(100);index"`
	PaymentID      string        `json:"payment_id" gorm:"type:varchar(100);index"`
	CancelReason   string        `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	DeliveredAt    *time.Time    `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
}

// LineTotal is the amount paid for this line before coupon apportionment.
func (o Order) LineTotal() int64 {
	return o.Price * int64(o.Quantity)
}
