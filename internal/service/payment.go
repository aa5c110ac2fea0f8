package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/divinecoid/sabkabazaar/internal/model"
	"github.com/divinecoid/sabkabazaar/internal/money"
	"github.com/divinecoid/sabkabazaar/internal/notify"
	"github.com/divinecoid/sabkabazaar/internal/payment"
)

// PaymentGateway is the part of the gateway client reconciliation needs.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payment.Order, error)
	FetchOrder(ctx context.Context, id string) (*payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type PaymentService struct {
	gateway   PaymentGateway
	orders    *OrderService
	bus       *notify.Bus
	logger    *slog.Logger
	currency  string
	maxAmount int64
}

func NewPaymentService(gateway PaymentGateway, orders *OrderService, bus *notify.Bus, logger *slog.Logger, currency string, maxAmount int64) *PaymentService {
	return &PaymentService{
		gateway:   gateway,
		orders:    orders,
		bus:       bus,
		logger:    logger,
		currency:  currency,
		maxAmount: maxAmount,
	}
}

func (s *PaymentService) KeyID() string {
	return s.gateway.KeyID()
}

// CreateGatewayOrder opens a gateway order for amount minor units.
func (s *PaymentService) CreateGatewayOrder(ctx context.Context, amount int64) (*payment.Order, error) {
	if amount <= 0 {
		return nil, invalid("amount", "must be greater than zero")
	}
	if amount > s.maxAmount {
		return nil, invalid("amount", "must not exceed %s %s", money.FormatMajor(s.maxAmount), s.currency)
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	order, err := s.gateway.CreateOrder(ctx, amount, s.currency, receipt)
	if err != nil {
		if !errors.Is(err, payment.ErrGateway) {
			err = fmt.Errorf("%w: %v", payment.ErrGateway, err)
		}
		return nil, err
	}

	s.logger.Info("gateway order created", "gateway_order_id", order.ID, "amount", order.Amount, "receipt", receipt)
	return order, nil
}

type VerifyInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	Items          []OrderItemInput
	// ClientTotal is a display hint and only logged.
	ClientTotal *int64
}

// Verify authenticates a checkout callback and records the paid order. A
// repeat call for an already reconciled payment returns the existing order.
func (s *PaymentService) Verify(ctx context.Context, user *model.User, in VerifyInput) (*model.Order, error) {
	switch {
	case in.GatewayOrderID == "":
		return nil, invalid("razorpayOrderId", "is required")
	case in.PaymentID == "":
		return nil, invalid("razorpayPaymentId", "is required")
	case in.Signature == "":
		return nil, invalid("razorpaySignature", "is required")
	}

	if !s.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		s.logger.Warn("payment signature mismatch", "user_id", user.ID, "gateway_order_id", in.GatewayOrderID)
		return nil, ErrInvalidSignature
	}

	existing, err := s.existing(ctx, user, in.PaymentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	total, err := s.orders.Quote(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	if in.ClientTotal != nil && *in.ClientTotal != total {
		s.logger.Warn("client payment total ignored", "payment_id", in.PaymentID, "client_total", *in.ClientTotal, "total", total)
	}

	gatewayOrder, err := s.gateway.FetchOrder(ctx, in.GatewayOrderID)
	if err != nil {
		if !errors.Is(err, payment.ErrGateway) {
			err = fmt.Errorf("%w: %v", payment.ErrGateway, err)
		}
		return nil, err
	}
	if gatewayOrder.Amount != total {
		s.logger.Warn("payment amount mismatch",
			"payment_id", in.PaymentID, "gateway_amount", gatewayOrder.Amount, "total", total)
		return nil, ErrAmountMismatch
	}

	paymentID, gatewayOrderID := in.PaymentID, in.GatewayOrderID
	order, err := s.orders.place(ctx, placement{
		userID:         user.ID,
		items:          in.Items,
		status:         model.OrderStatusProcessing,
		paymentID:      &paymentID,
		gatewayOrderID: &gatewayOrderID,
		expectTotal:    &gatewayOrder.Amount,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent verify for the same payment committed first.
		return s.existing(ctx, user, in.PaymentID)
	}
	if errors.Is(err, ErrInsufficientStock) {
		return s.recordUnfulfilled(ctx, user, in, gatewayOrder.Amount, err)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment reconciled", "order_id", order.ID, "payment_id", paymentID, "total", order.Total)
	s.orders.publish(ctx, notify.TopicOrderPaid, order)
	return order, nil
}

// recordUnfulfilled keeps a captured payment on record when its stock ran out
// between checkout and verification. The order is stored CANCELLED without
// touching stock so a refund can be issued against its payment id.
func (s *PaymentService) recordUnfulfilled(ctx context.Context, user *model.User, in VerifyInput, amount int64, cause error) (*model.Order, error) {
	paymentID, gatewayOrderID := in.PaymentID, in.GatewayOrderID
	order, err := s.orders.place(ctx, placement{
		userID:         user.ID,
		items:          in.Items,
		status:         model.OrderStatusCancelled,
		paymentID:      &paymentID,
		gatewayOrderID: &gatewayOrderID,
		noReserve:      true,
		cancelReason:   model.CancelReasonOutOfStock,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.existing(ctx, user, in.PaymentID)
	}
	if err != nil {
		s.logger.Error("paid order could not be recorded",
			"payment_id", paymentID, "gateway_order_id", gatewayOrderID, "cause", cause, "error", err)
		return nil, err
	}

	s.logger.Error("paid order could not be fulfilled, refund required",
		"order_id", order.ID, "payment_id", paymentID, "gateway_order_id", gatewayOrderID,
		"amount", money.FormatMajor(amount), "currency", s.currency, "cause", cause)
	s.bus.Publish(ctx, notify.Event{
		Topic: notify.TopicOrderRefundRequired,
		Payload: map[string]any{
			"order_id":   order.ID,
			"user_id":    order.UserID,
			"payment_id": paymentID,
			"amount":     amount,
			"reason":     order.CancelReason,
		},
	})
	return order, nil
}

// existing returns the order already recorded for paymentID. A payment that
// belongs to another user is reported as a bad signature.
func (s *PaymentService) existing(ctx context.Context, user *model.User, paymentID string) (*model.Order, error) {
	order, err := s.orders.findByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID {
		s.logger.Warn("payment id replayed by another user", "payment_id", paymentID, "user_id", user.ID)
		return nil, ErrInvalidSignature
	}
	return order, nil
}
