package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product prices are minor currency units (paise).
type Product struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Price       int64       `gorm:"not null;check:chk_products_price,price >= 0" json:"price"`
	Stock       int         `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Category    string      `gorm:"type:varchar(100);index" json:"category"`
	Brand       string      `gorm:"type:varchar(100)" json:"brand"`
	Images      StringSlice `gorm:"type:text" json:"images"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
