package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
)

// SaveTransactions stores transactions as baskets of dataset, creating the
// dataset on first use. Baskets whose ID already exists in the dataset are
// skipped. It returns the number of baskets inserted.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, dataset, source string, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(dataset, "dataset"); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	var inserted int
	err := common.WithRetry(ctx, func() error {
		n, err := s.saveOnce(ctx, dataset, source, transactions)
		if err != nil {
			if isBusy(err) {
				return err
			}
			return common.Permanent(err)
		}
		inserted = n
		return nil
	}, saveRetry)
	if err != nil {
		return 0, err
	}

	slog.Debug("Saved baskets",
		"dataset", dataset,
		"received", len(transactions),
		"inserted", inserted)

	return inserted, nil
}

// saveRetry bounds how long a save waits for a competing writer beyond the
// driver's busy timeout.
var saveRetry = common.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     time.Second,
}

func (s *SQLiteStorage) saveOnce(ctx context.Context, dataset, source string, transactions []model.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := s.saveTransactionsTx(ctx, tx, dataset, source, transactions)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit baskets: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, dataset, source string, transactions []model.Transaction) (int, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO datasets (name, source) VALUES (?, ?)`,
		dataset, source); err != nil {
		return 0, fmt.Errorf("failed to create dataset: %w", err)
	}

	basketStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO baskets (dataset, external_id, hash)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = basketStmt.Close() }()

	itemStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO basket_items (basket_id, item) VALUES (?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = itemStmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		items := txn.ItemSet()
		hash := txn.Hash
		if hash == "" {
			hash = txn.GenerateHash()
		}

		res, err := basketStmt.ExecContext(ctx, dataset, txn.ID, hash)
		if err != nil {
			return 0, fmt.Errorf("failed to insert basket %s: %w", txn.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to check insert of basket %s: %w", txn.ID, err)
		}
		if affected == 0 {
			continue
		}

		basketID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get basket id: %w", err)
		}

		for _, item := range items.Items() {
			if _, err := itemStmt.ExecContext(ctx, basketID, item); err != nil {
				return 0, fmt.Errorf("failed to insert item %q of basket %s: %w", item, txn.ID, err)
			}
		}
		inserted++
	}

	return inserted, nil
}

// GetTransactions loads every basket of dataset in insertion order.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, dataset string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(dataset, "dataset"); err != nil {
		return nil, err
	}
	if err := s.requireDataset(ctx, s.db, dataset); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.external_id, b.hash, i.item
		FROM baskets b
		JOIN basket_items i ON i.basket_id = b.id
		WHERE b.dataset = ?
		ORDER BY b.id, i.item
	`, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to query baskets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	lastID := int64(-1)
	for rows.Next() {
		var (
			id         int64
			externalID string
			hash       string
			item       string
		)
		if err := rows.Scan(&id, &externalID, &hash, &item); err != nil {
			return nil, fmt.Errorf("failed to scan basket: %w", err)
		}
		if id != lastID {
			transactions = append(transactions, model.Transaction{ID: externalID, Hash: hash})
			lastID = id
		}
		last := &transactions[len(transactions)-1]
		last.Items = append(last.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating baskets: %w", err)
	}

	return transactions, nil
}

// CountTransactions returns the number of baskets stored in dataset.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, dataset string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(dataset, "dataset"); err != nil {
		return 0, err
	}
	if err := s.requireDataset(ctx, s.db, dataset); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM baskets WHERE dataset = ?`, dataset).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count baskets: %w", err)
	}
	return count, nil
}

// ListDatasets returns every dataset ordered by name.
func (s *SQLiteStorage) ListDatasets(ctx context.Context) ([]service.DatasetInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.name, COALESCE(d.source, ''), d.created_at, COUNT(b.id)
		FROM datasets d
		LEFT JOIN baskets b ON b.dataset = d.name
		GROUP BY d.name
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var datasets []service.DatasetInfo
	for rows.Next() {
		var (
			info      service.DatasetInfo
			createdAt any
		)
		if err := rows.Scan(&info.Name, &info.Source, &createdAt, &info.Baskets); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		info.CreatedAt = parseTimestamp(createdAt)
		datasets = append(datasets, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}

	return datasets, nil
}

// DeleteDataset removes dataset and all of its baskets.
func (s *SQLiteStorage) DeleteDataset(ctx context.Context, dataset string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(dataset, "dataset"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireDataset(ctx, tx, dataset); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM basket_items
		WHERE basket_id IN (SELECT id FROM baskets WHERE dataset = ?)
	`, dataset); err != nil {
		return fmt.Errorf("failed to delete basket items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM baskets WHERE dataset = ?`, dataset); err != nil {
		return fmt.Errorf("failed to delete baskets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, dataset); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStorage) requireDataset(ctx context.Context, q queryable, dataset string) error {
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM datasets WHERE name = ?`, dataset).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: dataset %q", common.ErrNotFound, dataset)
	}
	if err != nil {
		return fmt.Errorf("failed to look up dataset: %w", err)
	}
	return nil
}

// parseTimestamp accepts the driver's decoded DATETIME or its raw text form.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.DateTime, t)
		if err == nil {
			return parsed
		}
	case []byte:
		parsed, err := time.Parse(time.DateTime, string(t))
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}
