package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the checkout repositories.
// Every repository returned inside fn shares one database transaction, which is
// committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction
type TransactionalRepositories interface {
	// Orders returns the order repository scoped to the current transaction
	Orders() order.Repository
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
	// History returns the status history repository scoped to the current transaction
	History() order.HistoryRepository
}

// NoOpTransactionScope runs fn against the given repositories without a transaction.
// Intended for tests.
type NoOpTransactionScope struct {
	orders   order.Repository
	products catalog.ProductRepository
	history  order.HistoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(orders order.Repository, products catalog.ProductRepository, history order.HistoryRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orders: orders, products: products, history: history}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() order.Repository { return s.orders }

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.products }

// History returns the history repository
func (s *NoOpTransactionScope) History() order.HistoryRepository { return s.history }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
