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

// InspectionStandardRepository defines data access for inspection headers.
type InspectionStandardRepository interface {
	Create(ctx context.Context, std *models.InspectionStandard) error
	Get(ctx context.Context, id uuid.UUID) (*models.InspectionStandard, error)
	GetByPlan(ctx context.Context, controlPlanID uuid.UUID) (*models.InspectionStandard, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InspectionItemRepository defines data access for inspection rows.
type InspectionItemRepository interface {
	Create(ctx context.Context, item *models.InspectionItem) error
	GetByStandard(ctx context.Context, standardID uuid.UUID) ([]*models.InspectionItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type inspectionStandardRepository struct {
	db *database.DB
}

// NewInspectionStandardRepository creates a new inspection standard repository.
func NewInspectionStandardRepository(db *database.DB) InspectionStandardRepository {
	return &inspectionStandardRepository{db: db}
}

var _ InspectionStandardRepository = (*inspectionStandardRepository)(nil)

const inspectionStandardColumns = `id, control_plan_id, product_id, doc_number, revision, status, created_at, updated_at`

func scanInspectionStandard(row pgx.Row) (*models.InspectionStandard, error) {
	var s models.InspectionStandard
	err := row.Scan(&s.ID, &s.ControlPlanID, &s.ProductID, &s.DocNumber,
		&s.Revision, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *inspectionStandardRepository) Create(ctx context.Context, std *models.InspectionStandard) error {
	if std.ID == uuid.Nil {
		std.ID = uuid.New()
	}
	if std.Status == "" {
		std.Status = models.StatusDraft
	}
	if std.Revision == "" {
		std.Revision = "A"
	}
	now := time.Now()
	std.CreatedAt = now
	std.UpdatedAt = now

	query := `
		INSERT INTO inspection_standards (` + inspectionStandardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		std.ID, std.ControlPlanID, std.ProductID, std.DocNumber,
		std.Revision, std.Status, std.CreatedAt, std.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert inspection standard: %w", err)
	}
	return nil
}

func (r *inspectionStandardRepository) Get(ctx context.Context, id uuid.UUID) (*models.InspectionStandard, error) {
	query := `SELECT ` + inspectionStandardColumns + ` FROM inspection_standards WHERE id = $1`

	s, err := scanInspectionStandard(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("inspection standard %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get inspection standard: %w", err)
	}
	return s, nil
}

func (r *inspectionStandardRepository) GetByPlan(ctx context.Context, controlPlanID uuid.UUID) (*models.InspectionStandard, error) {
	query := `SELECT ` + inspectionStandardColumns + ` FROM inspection_standards WHERE control_plan_id = $1 ORDER BY created_at LIMIT 1`

	s, err := scanInspectionStandard(r.db.QueryRow(ctx, query, controlPlanID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("inspection standard for control plan %s: %w", controlPlanID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get inspection standard by plan: %w", err)
	}
	return s, nil
}

func (r *inspectionStandardRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	return updateDocumentStatus(ctx, r.db, "inspection_standards", id, status)
}

func (r *inspectionStandardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inspection_standards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inspection standard: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inspection standard %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

type inspectionItemRepository struct {
	db *database.DB
}

// NewInspectionItemRepository creates a new inspection item repository.
func NewInspectionItemRepository(db *database.DB) InspectionItemRepository {
	return &inspectionItemRepository{db: db}
}

var _ InspectionItemRepository = (*inspectionItemRepository)(nil)

const inspectionItemColumns = `id, standard_id, linked_cp_item_id, characteristic_id, item_number,
	inspection_name, acceptance_criteria, inspection_method, sample_size, frequency, created_at`

func scanInspectionItem(row pgx.Row) (*models.InspectionItem, error) {
	var i models.InspectionItem
	err := row.Scan(&i.ID, &i.StandardID, &i.LinkedCPItemID, &i.CharacteristicID,
		&i.ItemNumber, &i.InspectionName, &i.AcceptanceCriteria,
		&i.InspectionMethod, &i.SampleSize, &i.Frequency, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *inspectionItemRepository) Create(ctx context.Context, item *models.InspectionItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()

	query := `
		INSERT INTO inspection_items (` + inspectionItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.StandardID, item.LinkedCPItemID, item.CharacteristicID,
		item.ItemNumber, item.InspectionName, item.AcceptanceCriteria,
		item.InspectionMethod, item.SampleSize, item.Frequency, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inspection item: %w", err)
	}
	return nil
}

func (r *inspectionItemRepository) GetByStandard(ctx context.Context, standardID uuid.UUID) ([]*models.InspectionItem, error) {
	query := `SELECT ` + inspectionItemColumns + ` FROM inspection_items WHERE standard_id = $1 ORDER BY item_number`

	rows, err := r.db.Query(ctx, query, standardID)
	if err != nil {
		return nil, fmt.Errorf("list inspection items: %w", err)
	}
	defer rows.Close()

	var out []*models.InspectionItem
	for rows.Next() {
		i, err := scanInspectionItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inspection item: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *inspectionItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inspection_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inspection item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inspection item %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
