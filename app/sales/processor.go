package sales

import (
	"context"
	"fmt"
	"math"

	"github.com/mytheresa/retail-manager/models"
	"github.com/sirupsen/logrus"
)

// LineItem is one cart entry.
type LineItem struct {
	ProductID uint
	Quantity  int
}

// StockUpdate is the stock a product was left with after a sale.
type StockUpdate struct {
	ProductID uint
	NewStock  int
}

type Store interface {
	BeginSale(ctx context.Context) (models.StockTx, error)
}

type Processor struct {
	store Store
	log   logrus.FieldLogger
}

func NewProcessor(store Store, log logrus.FieldLogger) *Processor {
	return &Processor{
		store: store,
		log:   log,
	}
}

// Process validates every line item against locked stock and then applies
// all decrements in one transaction. Any failure leaves stock untouched.
//
// Quantities for a repeated product accumulate, so each line item is checked
// against everything the cart asked for that product so far. Updates are
// returned once per product, in order of first appearance.
func (p *Processor) Process(ctx context.Context, cart []LineItem) ([]StockUpdate, error) {
	if len(cart) == 0 {
		return []StockUpdate{}, nil
	}

	var ids []uint
	for i, item := range cart {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line item %d needs a product id and a positive quantity", ErrMalformedRequest, i)
		}
		ids = append(ids, item.ProductID)
	}

	tx, err := p.store.BeginSale(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	locked, err := tx.LockProducts(ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	demand := make(map[uint]int, len(locked))
	var order []uint
	for _, item := range cart {
		product, ok := locked[item.ProductID]
		if !ok {
			return nil, &NotFoundError{ProductID: item.ProductID}
		}
		if _, seen := demand[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		// Compare against what is left so the running total never overflows.
		if item.Quantity > product.Stock-demand[item.ProductID] {
			return nil, &InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: addCapped(demand[item.ProductID], item.Quantity),
			}
		}
		demand[item.ProductID] += item.Quantity
	}

	updates := make([]StockUpdate, 0, len(order))
	for _, id := range order {
		if err := tx.DecrementStock(id, demand[id]); err != nil {
			return nil, fmt.Errorf("decrement product %d: %w", id, err)
		}
		updates = append(updates, StockUpdate{
			ProductID: id,
			NewStock:  locked[id].Stock - demand[id],
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"line_items": len(cart),
		"products":   len(updates),
	}).Info("sale committed")
	return updates, nil
}

func addCapped(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
