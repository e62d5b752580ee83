package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/repositories"
)

// CacheSeeder loads a JSON export of the remote catalog into the local
// offline caches. It exists for first-run provisioning: a brand-new terminal
// can be stocked from a file before it ever reaches the remote store.
type CacheSeeder struct {
	products  repositories.ProductCacheRepository
	customers repositories.CustomerCacheRepository
	jsonPath  string
	logger    *logrus.Logger
}

// NewCacheSeeder creates a new cache seeder
func NewCacheSeeder(
	products repositories.ProductCacheRepository,
	customers repositories.CustomerCacheRepository,
	jsonPath string,
	logger *logrus.Logger,
) *CacheSeeder {
	return &CacheSeeder{
		products:  products,
		customers: customers,
		jsonPath:  jsonPath,
		logger:    logger,
	}
}

// SeedResult contains the results of a seeding run
type SeedResult struct {
	ProductsSeeded  int
	CustomersSeeded int
	Warnings        []string
}

// CheckJSONFilesExist reports which of the expected export files are present
func (s *CacheSeeder) CheckJSONFilesExist() (bool, []string) {
	expected := []string{"products.json", "customers.json"}

	var existing []string
	for _, name := range expected {
		if _, err := os.Stat(filepath.Join(s.jsonPath, name)); err == nil {
			existing = append(existing, name)
		}
	}

	return len(existing) > 0, existing
}

// Seed replaces both cache snapshots from the JSON export. A missing file is
// a warning, not an error, so a products-only export still works.
func (s *CacheSeeder) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{
		Warnings: make([]string, 0),
	}

	products, err := s.loadProducts()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load products export: %w", err)
		}
		result.Warnings = append(result.Warnings, "products.json not found, product cache left untouched")
	} else {
		valid := products[:0]
		for _, product := range products {
			if product.ID == "" || product.Name == "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("skipping product with missing id or name: %+v", product))
				continue
			}
			valid = append(valid, product)
		}

		if err := s.products.Replace(ctx, valid); err != nil {
			return nil, fmt.Errorf("failed to seed product cache: %w", err)
		}
		result.ProductsSeeded = len(valid)

		s.logger.WithField("count", len(valid)).Info("Product cache seeded")
	}

	customers, err := s.loadCustomers()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load customers export: %w", err)
		}
		result.Warnings = append(result.Warnings, "customers.json not found, customer cache left untouched")
	} else {
		valid := customers[:0]
		for _, customer := range customers {
			if customer.ID == "" || customer.Name == "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("skipping customer with missing id or name: %+v", customer))
				continue
			}
			valid = append(valid, customer)
		}

		if err := s.customers.Replace(ctx, valid); err != nil {
			return nil, fmt.Errorf("failed to seed customer cache: %w", err)
		}
		result.CustomersSeeded = len(valid)

		s.logger.WithField("count", len(valid)).Info("Customer cache seeded")
	}

	return result, nil
}

// Validate re-reads the caches and compares counts against the export
func (s *CacheSeeder) Validate(ctx context.Context) error {
	if products, err := s.loadProducts(); err == nil {
		count, err := s.products.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count cached products: %w", err)
		}
		if count > len(products) {
			return fmt.Errorf("cached product count %d exceeds export size %d", count, len(products))
		}
	}

	if customers, err := s.loadCustomers(); err == nil {
		count, err := s.customers.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count cached customers: %w", err)
		}
		if count > len(customers) {
			return fmt.Errorf("cached customer count %d exceeds export size %d", count, len(customers))
		}
	}

	return nil
}

func (s *CacheSeeder) loadProducts() ([]models.Product, error) {
	data, err := os.ReadFile(filepath.Join(s.jsonPath, "products.json"))
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse products.json: %w", err)
	}
	return products, nil
}

func (s *CacheSeeder) loadCustomers() ([]models.Customer, error) {
	data, err := os.ReadFile(filepath.Join(s.jsonPath, "customers.json"))
	if err != nil {
		return nil, err
	}

	var customers []models.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, fmt.Errorf("failed to parse customers.json: %w", err)
	}
	return customers, nil
}
