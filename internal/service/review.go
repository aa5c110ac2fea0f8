package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/divinecoid/sabkabazaar/internal/model"
)

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return invalid("rating", "must be between 1 and 5")
	}
	return nil
}

func (s *ReviewService) ListForProduct(ctx context.Context, productID string) ([]model.Review, error) {
	if err := s.productExists(ctx, productID); err != nil {
		return nil, err
	}
	reviews := []model.Review{}
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Create adds the user's review of a product. The (user, product) unique
// index rejects a second one.
func (s *ReviewService) Create(ctx context.Context, userID, productID string, rating int, comment string) (*model.Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := s.productExists(ctx, productID); err != nil {
		return nil, err
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, userID, id string, rating int, comment string) (*model.Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"rating": rating, "comment": strings.TrimSpace(comment)})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var review model.Review
	if err := s.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &review, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Review{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewService) productExists(ctx context.Context, productID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
