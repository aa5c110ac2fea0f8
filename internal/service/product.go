package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/divinecoid/sabkabazaar/internal/model"
	"github.com/divinecoid/sabkabazaar/internal/money"
)

// ProductSheet is the workbook sheet read by Import.
const ProductSheet = "Products"

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

type ProductService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewProductService(db *gorm.DB, logger *slog.Logger) *ProductService {
	return &ProductService{db: db, logger: logger}
}

type ProductFilter struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

func (s *ProductService) List(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	if f.Limit <= 0 {
		f.Limit = defaultProductLimit
	}
	if f.Limit > maxProductLimit {
		f.Limit = maxProductLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.Product{})
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if query := strings.TrimSpace(f.Query); query != "" {
			q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
		}
		return q
	}

	page := &ProductPage{Products: []model.Product{}, Limit: f.Limit, Offset: f.Offset}
	if err := filtered().Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := filtered().Order("name ASC").Limit(f.Limit).Offset(f.Offset).Find(&page.Products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return page, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &product, nil
}

type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported int          `json:"imported"`
	Skipped  []SkippedRow `json:"skipped"`
}

// Import upserts products by name from the Products sheet of an xlsx
// workbook. Columns: name, category, price, description, stock, brand.
// Prices are major units. Bad rows are skipped and reported by sheet row
// number; the good rows are written in one transaction.
func (s *ProductService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, invalid("file", "not a valid xlsx workbook")
	}
	defer xlsx.Close()

	rows, err := xlsx.GetRows(ProductSheet)
	if err != nil {
		return nil, invalid("file", "workbook has no %q sheet", ProductSheet)
	}

	result := &ImportResult{Skipped: []SkippedRow{}}
	var products []model.Product
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		product, reason := parseProductRow(row)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedRow{Row: i + 1, Reason: reason})
			continue
		}
		products = append(products, product)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range products {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"category", "price", "description", "stock", "brand", "updated_at"}),
			}).Create(&products[i]).Error
			if err != nil {
				return fmt.Errorf("failed to upsert product %q: %w", products[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Imported = len(products)
	s.logger.Info("products imported", "imported", result.Imported, "skipped", len(result.Skipped))
	return result, nil
}

func parseProductRow(row []string) (model.Product, string) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	if len(row) < 3 {
		return model.Product{}, fmt.Sprintf("expected at least 3 columns, got %d", len(row))
	}
	name := cell(0)
	if name == "" {
		return model.Product{}, "name is empty"
	}
	price, err := money.ParseMajor(cell(2))
	if err != nil {
		return model.Product{}, fmt.Sprintf("invalid price %q: %v", cell(2), err)
	}

	stock := 0
	if raw := cell(4); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return model.Product{}, fmt.Sprintf("invalid stock %q", raw)
		}
	}

	return model.Product{
		Name:        name,
		Category:    cell(1),
		Price:       price,
		Description: cell(3),
		Stock:       stock,
		Brand:       cell(5),
		Images:      model.StringSlice{},
	}, ""
}
