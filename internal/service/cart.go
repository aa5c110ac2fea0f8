package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/divinecoid/sabkabazaar/internal/model"
)

type CartService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCartService(db *gorm.DB, logger *slog.Logger) *CartService {
	return &CartService{db: db, logger: logger}
}

// Cart is a user's lines priced at current product prices.
type Cart struct {
	Items    []model.CartItem `json:"items"`
	Subtotal int64            `json:"subtotal"`
}

// Add puts quantity units of a product in the user's cart. A repeat add
// increments the existing line; the cumulative quantity must fit in stock.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}
	if productID == "" {
		return nil, invalid("productId", "is required")
	}

	var (
		line *model.CartItem
		err  error
	)
	for attempt := 0; attempt < 2; attempt++ {
		line, err = s.addOnce(ctx, userID, productID, quantity)
		// A concurrent add for the same product can win the insert; the
		// second pass sees its row and increments it instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			s.logger.Debug("cart line insert raced, retrying as increment", "user_id", userID, "product_id", productID)
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *CartService) addOnce(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	var line model.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > product.Stock {
				return ErrInsufficientStock
			}
			line = model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("failed to create cart line: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load cart line: %w", err)
		default:
			if quantity > product.Stock-line.Quantity {
				return ErrInsufficientStock
			}
			next := line.Quantity + quantity
			res := tx.Model(&model.CartItem{}).
				Where("id = ? AND quantity = ?", line.ID, line.Quantity).
				Update("quantity", next)
			if res.Error != nil {
				return fmt.Errorf("failed to update cart line: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Lost a race with another add; report it like an insert race.
				return gorm.ErrDuplicatedKey
			}
			line.Quantity = next
		}

		line.Product = &product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Update sets the quantity of one of the user's lines. A line that belongs to
// someone else is reported as not found.
func (s *CartService) Update(ctx context.Context, userID, lineID string, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}

	var line model.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Product").Where("id = ? AND user_id = ?", lineID, userID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load cart line: %w", err)
		}
		if line.Product == nil {
			return ErrNotFound
		}
		if quantity > line.Product.Stock {
			return ErrInsufficientStock
		}
		if err := tx.Model(&model.CartItem{}).Where("id = ?", line.ID).Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart line: %w", err)
		}
		line.Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *CartService) Remove(ctx context.Context, userID, lineID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", lineID, userID).Delete(&model.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) List(ctx context.Context, userID string) (*Cart, error) {
	var items []model.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	cart := &Cart{Items: items}
	for _, item := range items {
		if item.Product != nil {
			cart.Subtotal += item.Product.Price * int64(item.Quantity)
		}
	}
	return cart, nil
}
