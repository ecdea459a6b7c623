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

// CharacteristicRepository defines data access for characteristics.
type CharacteristicRepository interface {
	Create(ctx context.Context, c *models.Characteristic) error
	Get(ctx context.Context, id uuid.UUID) (*models.Characteristic, error)
	GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Characteristic, error)
	Update(ctx context.Context, c *models.Characteristic) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type characteristicRepository struct {
	db *database.DB
}

// NewCharacteristicRepository creates a new characteristic repository.
func NewCharacteristicRepository(db *database.DB) CharacteristicRepository {
	return &characteristicRepository{db: db}
}

var _ CharacteristicRepository = (*characteristicRepository)(nil)

const characteristicColumns = `id, product_id, name, type, category, specification, lsl, usl, unit, measurement_method, created_at, updated_at`

func scanCharacteristic(row pgx.Row) (*models.Characteristic, error) {
	var c models.Characteristic
	err := row.Scan(&c.ID, &c.ProductID, &c.Name, &c.Type, &c.Category,
		&c.Specification, &c.LSL, &c.USL, &c.Unit, &c.MeasurementMethod,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *characteristicRepository) Create(ctx context.Context, c *models.Characteristic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO characteristics (` + characteristicColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.ProductID, c.Name, c.Type, c.Category,
		c.Specification, c.LSL, c.USL, c.Unit, c.MeasurementMethod,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert characteristic: %w", err)
	}
	return nil
}

func (r *characteristicRepository) Get(ctx context.Context, id uuid.UUID) (*models.Characteristic, error) {
	query := `SELECT ` + characteristicColumns + ` FROM characteristics WHERE id = $1`

	c, err := scanCharacteristic(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("characteristic %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get characteristic: %w", err)
	}
	return c, nil
}

func (r *characteristicRepository) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Characteristic, error) {
	query := `SELECT ` + characteristicColumns + ` FROM characteristics WHERE product_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list characteristics: %w", err)
	}
	defer rows.Close()

	var out []*models.Characteristic
	for rows.Next() {
		c, err := scanCharacteristic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan characteristic: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *characteristicRepository) Update(ctx context.Context, c *models.Characteristic) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE characteristics
		SET name = $2, type = $3, category = $4, specification = $5,
		    lsl = $6, usl = $7, unit = $8, measurement_method = $9, updated_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.Type, c.Category, c.Specification,
		c.LSL, c.USL, c.Unit, c.MeasurementMethod, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update characteristic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("characteristic %s: %w", c.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *characteristicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characteristics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete characteristic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("characteristic %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
