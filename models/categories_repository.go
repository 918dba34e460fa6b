package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetAllCategories() ([]Category, error) {
	var categories []Category
	if err := r.db.Order("name, id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategoriesWithProducts returns every category with its products loaded,
// including categories that have none.
func (r *CategoriesRepository) GetCategoriesWithProducts() ([]Category, error) {
	var categories []Category
	if err := r.db.
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("products.name, products.id")
		}).
		Order("name, id").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(id uint) (*Category, error) {
	var category Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) CreateCategory(category *Category) error {
	return r.db.Omit(clause.Associations).Create(category).Error
}

func (r *CategoriesRepository) UpdateCategory(category *Category) error {
	res := r.db.Model(&Category{}).
		Where("id = ?", category.ID).
		Update("name", category.Name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category. Deletion is refused while any product
// still references it.
func (r *CategoriesRepository) DeleteCategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryInUse
		}

		res := tx.Delete(&Category{}, id)
		if res.Error != nil {
			if pqCode(res.Error) == pqForeignKeyViolation {
				return ErrCategoryInUse
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}
