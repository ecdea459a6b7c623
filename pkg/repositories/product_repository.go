// Package repositories provides typed CRUD access to the traceability
// graph. Repositories carry no cross-entity logic; missing rows surface
// as apperrors.ErrNotFound and every other datastore failure passes
// through wrapped.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
	"github.com/tracewright/apqp-engine/pkg/database"
	"github.com/tracewright/apqp-engine/pkg/models"
)

// ProductRepository defines data access for products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

var _ ProductRepository = (*productRepository)(nil)

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (id, part_number, name, customer_name, vehicle_model, process_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		product.ID, product.PartNumber, product.Name, product.CustomerName,
		product.VehicleModel, product.ProcessName, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `
		SELECT id, part_number, name, customer_name, vehicle_model, process_name, created_at, updated_at
		FROM products WHERE id = $1`

	var p models.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.PartNumber, &p.Name, &p.CustomerName,
		&p.VehicleModel, &p.ProcessName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, part_number, name, customer_name, vehicle_model, process_name, created_at, updated_at
		FROM products ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.PartNumber, &p.Name, &p.CustomerName,
			&p.VehicleModel, &p.ProcessName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()

	query := `
		UPDATE products
		SET part_number = $2, name = $3, customer_name = $4, vehicle_model = $5, process_name = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		product.ID, product.PartNumber, product.Name, product.CustomerName,
		product.VehicleModel, product.ProcessName, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", product.ID, apperrors.ErrNotFound)
	}
	return nil
}

// Delete removes the product; all documents reachable from it cascade.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
