// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/market-basket/internal/model"
)

// DatasetInfo summarizes a stored dataset.
type DatasetInfo struct {
	CreatedAt time.Time
	Name      string
	Source    string
	Baskets   int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Basket operations
	SaveTransactions(ctx context.Context, dataset, source string, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, dataset string) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, dataset string) (int, error)

	// Dataset operations
	ListDatasets(ctx context.Context) ([]DatasetInfo, error)
	DeleteDataset(ctx context.Context, dataset string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
