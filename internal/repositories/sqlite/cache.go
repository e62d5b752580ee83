package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductCacheRepository holds the offline snapshot of the product catalog.
// Replace runs the clear and the bulk insert in a single transaction so a
// concurrent reader never sees a half-empty cache.
type ProductCacheRepository struct {
	baseRepository
}

// NewProductCacheRepository creates a new product cache repository
func NewProductCacheRepository(db *sql.DB, logger *logrus.Logger) *ProductCacheRepository {
	return &ProductCacheRepository{
		baseRepository: newBaseRepository(db, "cached_products", logger),
	}
}

// Replace atomically swaps the cached product set
func (r *ProductCacheRepository) Replace(ctx context.Context, products []models.Product) error {
	err := r.withTransaction(ctx, "replace", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cached_products`); err != nil {
			return repositories.NewRepositoryError("replace", r.table, "", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO cached_products (id, payload) VALUES (?, ?)`)
		if err != nil {
			return repositories.NewRepositoryError("replace", r.table, "", err)
		}
		defer stmt.Close()

		for _, product := range products {
			payload, err := json.Marshal(product)
			if err != nil {
				return repositories.NewRepositoryError("replace", r.table, product.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, product.ID, string(payload)); err != nil {
				return repositories.NewRepositoryError("replace", r.table, product.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.WithField("count", len(products)).Info("Product cache replaced")
	return nil
}

// GetAll returns the most recently cached product snapshot
func (r *ProductCacheRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := r.executeQuery(ctx, "get_all", `SELECT payload FROM cached_products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, repositories.NewRepositoryError("get_all", r.table, "", err)
		}
		var product models.Product
		if err := json.Unmarshal([]byte(payload), &product); err != nil {
			return nil, repositories.NewRepositoryError("get_all", r.table, "", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("get_all", r.table, "", err)
	}

	return products, nil
}

// Count returns the cached product count
func (r *ProductCacheRepository) Count(ctx context.Context) (int, error) {
	var count int
	row := r.executeQueryRow(ctx, "count", `SELECT COUNT(*) FROM cached_products`)
	if err := row.Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", r.table, "", err)
	}
	return count, nil
}

// CustomerCacheRepository holds the offline snapshot of the customer list,
// with the same full-replace semantics as the product cache.
type CustomerCacheRepository struct {
	baseRepository
}

// NewCustomerCacheRepository creates a new customer cache repository
func NewCustomerCacheRepository(db *sql.DB, logger *logrus.Logger) *CustomerCacheRepository {
	return &CustomerCacheRepository{
		baseRepository: newBaseRepository(db, "cached_customers", logger),
	}
}

// Replace atomically swaps the cached customer set
func (r *CustomerCacheRepository) Replace(ctx context.Context, customers []models.Customer) error {
	err := r.withTransaction(ctx, "replace", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cached_customers`); err != nil {
			return repositories.NewRepositoryError("replace", r.table, "", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO cached_customers (id, payload) VALUES (?, ?)`)
		if err != nil {
			return repositories.NewRepositoryError("replace", r.table, "", err)
		}
		defer stmt.Close()

		for _, customer := range customers {
			payload, err := json.Marshal(customer)
			if err != nil {
				return repositories.NewRepositoryError("replace", r.table, customer.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, customer.ID, string(payload)); err != nil {
				return repositories.NewRepositoryError("replace", r.table, customer.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.WithField("count", len(customers)).Info("Customer cache replaced")
	return nil
}

// GetAll returns the most recently cached customer snapshot
func (r *CustomerCacheRepository) GetAll(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.executeQuery(ctx, "get_all", `SELECT payload FROM cached_customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, repositories.NewRepositoryError("get_all", r.table, "", err)
		}
		var customer models.Customer
		if err := json.Unmarshal([]byte(payload), &customer); err != nil {
			return nil, repositories.NewRepositoryError("get_all", r.table, "", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("get_all", r.table, "", err)
	}

	return customers, nil
}

// Count returns the cached customer count
func (r *CustomerCacheRepository) Count(ctx context.Context) (int, error) {
	var count int
	row := r.executeQueryRow(ctx, "count", `SELECT COUNT(*) FROM cached_customers`)
	if err := row.Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", r.table, "", err)
	}
	return count, nil
}
