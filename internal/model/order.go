package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// CancelReasonOutOfStock marks a paid order whose stock was gone by the time
// the payment was verified. The payment has to be refunded.
const CancelReasonOutOfStock = "out_of_stock_after_payment"

// orderTransitions is the complete set of legal status moves. PROCESSING is
// only ever entered by payment reconciliation, never by a transition.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// AdminSettable reports whether s may be requested through the admin status
// endpoint.
func (s OrderStatus) AdminSettable() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status change is possible.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the move s -> next is in the transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID             string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string      `gorm:"type:varchar(36);not null;index" json:"userId"`
	Total          int64       `gorm:"not null;check:chk_orders_total,total >= 0" json:"total"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentID      *string     `gorm:"type:varchar(64);uniqueIndex" json:"paymentId,omitempty"`
	GatewayOrderID *string     `gorm:"type:varchar(64)" json:"gatewayOrderId,omitempty"`
	CancelReason   string      `gorm:"type:varchar(64);not null;default:''" json:"cancelReason,omitempty"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	User           *User       `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem.Price is the unit price at purchase time, not a live join.
type OrderItem struct {
	ID        string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID   string   `gorm:"type:varchar(36);not null;index" json:"orderId"`
	ProductID string   `gorm:"type:varchar(36);not null;index" json:"productId"`
	Quantity  int      `gorm:"not null;check:chk_order_items_quantity,quantity >= 1" json:"quantity"`
	Price     int64    `gorm:"not null;check:chk_order_items_price,price >= 0" json:"price"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// LineTotal is Price x Quantity in minor units.
func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}
