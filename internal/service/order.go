package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/divinecoid/sabkabazaar/internal/model"
	"github.com/divinecoid/sabkabazaar/internal/notify"
)

// OrderItemInput is one requested line. Any client price is ignored.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type OrderService struct {
	db     *gorm.DB
	bus    *notify.Bus
	logger *slog.Logger
}

func NewOrderService(db *gorm.DB, bus *notify.Bus, logger *slog.Logger) *OrderService {
	return &OrderService{db: db, bus: bus, logger: logger}
}

// placement describes an order about to be written.
type placement struct {
	userID         string
	items          []OrderItemInput
	status         model.OrderStatus
	paymentID      *string
	gatewayOrderID *string
	// expectTotal, when set, must equal the total computed inside the
	// transaction or the whole placement is rolled back.
	expectTotal *int64
	// noReserve records the lines without touching product stock.
	noReserve    bool
	cancelReason string
}

// mergeItems validates the request lines and folds repeated product ids
// into one line, keeping first-seen order.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	merged := make([]OrderItemInput, 0, len(items))
	index := make(map[string]int, len(items))
	for i, item := range items {
		if item.ProductID == "" {
			return nil, invalid(fmt.Sprintf("items[%d].productId", i), "is required")
		}
		if item.Quantity < 1 {
			return nil, invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if at, ok := index[item.ProductID]; ok {
			if item.Quantity > math.MaxInt-merged[at].Quantity {
				return nil, invalid(fmt.Sprintf("items[%d].quantity", i), "is too large")
			}
			merged[at].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// addLine adds price x quantity to total, reporting false on overflow.
func addLine(total, price int64, quantity int) (int64, bool) {
	if price > 0 && int64(quantity) > (math.MaxInt64-total)/price {
		return total, false
	}
	return total + price*int64(quantity), true
}

// Quote prices items from current product data without reserving stock.
func (s *OrderService) Quote(ctx context.Context, items []OrderItemInput) (int64, error) {
	merged, err := mergeItems(items)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, item := range merged {
		var product model.Product
		if err := s.db.WithContext(ctx).First(&product, "id = ?", item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductID)
			}
			return 0, fmt.Errorf("failed to load product: %w", err)
		}
		var ok bool
		if total, ok = addLine(total, product.Price, item.Quantity); !ok {
			return 0, invalid("items", "total is too large")
		}
	}
	return total, nil
}

// Create places a PENDING order for the user. Prices come from the product
// table; clientTotal is only compared and logged.
func (s *OrderService) Create(ctx context.Context, userID string, items []OrderItemInput, clientTotal *int64) (*model.Order, error) {
	order, err := s.place(ctx, placement{
		userID: userID,
		items:  items,
		status: model.OrderStatusPending,
	})
	if err != nil {
		return nil, err
	}

	if clientTotal != nil && *clientTotal != order.Total {
		s.logger.Warn("client order total ignored",
			"order_id", order.ID, "client_total", *clientTotal, "total", order.Total)
	}
	s.publish(ctx, notify.TopicOrderCreated, order)
	return order, nil
}

// place writes an order, its items and the matching stock decrements in one
// transaction. Nothing is written if any line fails.
func (s *OrderService) place(ctx context.Context, p placement) (*model.Order, error) {
	merged, err := mergeItems(p.items)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		UserID:         p.userID,
		Status:         p.status,
		PaymentID:      p.paymentID,
		GatewayOrderID: p.gatewayOrderID,
		CancelReason:   p.cancelReason,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range merged {
			var product model.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductID)
				}
				return fmt.Errorf("failed to load product: %w", err)
			}

			if !p.noReserve {
				if item.Quantity > product.Stock {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
				}
				res := tx.Model(&model.Product{}).
					Where("id = ? AND stock >= ?", product.ID, item.Quantity).
					Update("stock", gorm.Expr("stock - ?", item.Quantity))
				if res.Error != nil {
					return fmt.Errorf("failed to reserve stock: %w", res.Error)
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
				}
			}

			var ok bool
			if order.Total, ok = addLine(order.Total, product.Price, item.Quantity); !ok {
				return invalid("items", "total is too large")
			}
			order.Items = append(order.Items, model.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
		}

		if p.expectTotal != nil && *p.expectTotal != order.Total {
			return ErrAmountMismatch
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, order.ID)
}

func (s *OrderService) load(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) findByPaymentID(ctx context.Context, paymentID string) (*model.Order, error) {
	var order model.Order
	if err := s.db.WithContext(ctx).Select("id").Where("payment_id = ?", paymentID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}
	return s.load(ctx, order.ID)
}

// Get returns an order to its owner or to an admin.
func (s *OrderService) Get(ctx context.Context, actor *model.User, id string) (*model.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]model.Order, error) {
	return s.list(ctx, s.db.Where("user_id = ?", userID))
}

func (s *OrderService) ListAll(ctx context.Context, actor *model.User) ([]model.Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return s.list(ctx, s.db)
}

func (s *OrderService) list(ctx context.Context, scope *gorm.DB) ([]model.Order, error) {
	orders := []model.Order{}
	err := scope.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus applies an admin-requested status change. The requested value
// must be admin-settable and the move must be in the transition table.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *model.User, id string, status string) (*model.Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	next := model.OrderStatus(status)
	if !next.AdminSettable() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var prev model.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		prev = order.Status
		if prev.Terminal() {
			return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, prev)
		}
		if !prev.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, prev, next)
		}
		ok, err := transition(tx, id, prev, next)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order status changed", "order_id", id, "from", prev, "to", next, "by", actor.ID)
	s.publishTransition(ctx, order, prev)
	return order, nil
}

// Cancel lets the owner cancel an order that is still exactly PENDING.
func (s *OrderService) Cancel(ctx context.Context, actor *model.User, id string) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order.UserID != actor.ID {
			return ErrForbidden
		}
		if order.Status != model.OrderStatusPending {
			return ErrNotPending
		}
		ok, err := transition(tx, id, model.OrderStatusPending, model.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, order, model.OrderStatusPending)
	return order, nil
}

// transition moves an order from prev to next only if it is still in prev.
// Entering CANCELLED returns the order's items to stock.
func transition(tx *gorm.DB, id string, prev, next model.OrderStatus) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, prev).
		Update("status", next)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if next == model.OrderStatusCancelled {
		if err := restock(tx, id); err != nil {
			return false, err
		}
	}
	return true, nil
}

func restock(tx *gorm.DB, orderID string) error {
	var items []model.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	for _, item := range items {
		err := tx.Model(&model.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to restock product %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, topic string, order *model.Order) {
	s.bus.Publish(ctx, notify.Event{
		Topic: topic,
		Payload: map[string]any{
			"order_id": order.ID,
			"user_id":  order.UserID,
			"status":   string(order.Status),
			"total":    order.Total,
		},
	})
}

func (s *OrderService) publishTransition(ctx context.Context, order *model.Order, prev model.OrderStatus) {
	s.bus.Publish(ctx, notify.Event{
		Topic: notify.TopicOrderStatusChanged,
		Payload: map[string]any{
			"order_id": order.ID,
			"user_id":  order.UserID,
			"from":     string(prev),
			"status":   string(order.Status),
		},
	})
}
