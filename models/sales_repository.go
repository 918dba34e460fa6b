package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConflict is returned when a conditional decrement finds fewer units
// than requested.
var ErrStockConflict = errors.New("stock changed during sale")

// StockTx is one open sale transaction. Nothing it writes is visible to other
// transactions until Commit; Rollback after Commit is a no-op.
type StockTx interface {
	// LockProducts loads the given products and holds their rows until the
	// transaction ends. Missing ids are absent from the result.
	LockProducts(ids []uint) (map[uint]Product, error)
	DecrementStock(id uint, quantity int) error
	Commit() error
	Rollback() error
}

type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// BeginSale opens a transaction bound to ctx. Cancelling ctx rolls it back.
func (r *SalesRepository) BeginSale(ctx context.Context) (StockTx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormStockTx{tx: tx}, nil
}

type gormStockTx struct {
	tx   *gorm.DB
	done bool
}

func (t *gormStockTx) LockProducts(ids []uint) (map[uint]Product, error) {
	locked := make(map[uint]Product, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	// Rows are locked in id order so concurrent sales cannot deadlock.
	var products []Product
	if err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		locked[p.ID] = p
	}
	return locked, nil
}

func (t *gormStockTx) DecrementStock(id uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("decrement of product %d by %d: %w", id, quantity, ErrStockConflict)
	}
	res := t.tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		if pqCode(res.Error) == pqCheckViolation {
			return ErrStockConflict
		}
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrStockConflict
	}
	return nil
}

func (t *gormStockTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Commit().Error
}

func (t *gormStockTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback().Error
}
