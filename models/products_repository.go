package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// GetInStock returns every product with at least one unit available.
func (r *ProductsRepository) GetInStock() ([]Product, error) {
	var products []Product
	if err := r.db.
		Where("stock > 0").
		Order("name, id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetLowStock returns products whose stock is at or below threshold.
func (r *ProductsRepository) GetLowStock(threshold int) ([]Product, error) {
	var products []Product
	if err := r.db.
		Preload("Category").
		Where("stock <= ?", threshold).
		Order("stock, id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(id uint) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

func (r *ProductsRepository) CreateProduct(product *Product) error {
	err := r.db.Omit(clause.Associations).Create(product).Error
	return translateProductError(err)
}

// UpdateProduct overwrites the editable fields of an existing product.
func (r *ProductsRepository) UpdateProduct(product *Product) error {
	res := r.db.Model(&Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"price":       product.Price,
			"stock":       product.Stock,
			"image":       product.Image,
			"category_id": product.CategoryID,
		})
	if res.Error != nil {
		return translateProductError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepository) DeleteProduct(id uint) error {
	res := r.db.Delete(&Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func translateProductError(err error) error {
	switch pqCode(err) {
	case "":
		return err
	case pqForeignKeyViolation:
		return ErrCategoryNotFound
	case pqCheckViolation:
		return ErrConstraint
	}
	return err
}
