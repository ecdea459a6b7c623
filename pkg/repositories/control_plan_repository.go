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

// ControlPlanRepository defines data access for control plan headers.
type ControlPlanRepository interface {
	Create(ctx context.Context, plan *models.ControlPlan) error
	Get(ctx context.Context, id uuid.UUID) (*models.ControlPlan, error)
	GetByHeader(ctx context.Context, riskHeaderID uuid.UUID) (*models.ControlPlan, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ControlPlanItemRepository defines data access for control plan rows.
type ControlPlanItemRepository interface {
	Create(ctx context.Context, item *models.ControlPlanItem) error
	Get(ctx context.Context, id uuid.UUID) (*models.ControlPlanItem, error)
	GetByPlan(ctx context.Context, planID uuid.UUID) ([]*models.ControlPlanItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type controlPlanRepository struct {
	db *database.DB
}

// NewControlPlanRepository creates a new control plan repository.
func NewControlPlanRepository(db *database.DB) ControlPlanRepository {
	return &controlPlanRepository{db: db}
}

var _ ControlPlanRepository = (*controlPlanRepository)(nil)

const controlPlanColumns = `id, risk_header_id, product_id, doc_number, revision, status, created_at, updated_at`

func scanControlPlan(row pgx.Row) (*models.ControlPlan, error) {
	var p models.ControlPlan
	err := row.Scan(&p.ID, &p.RiskHeaderID, &p.ProductID, &p.DocNumber,
		&p.Revision, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *controlPlanRepository) Create(ctx context.Context, plan *models.ControlPlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.Status == "" {
		plan.Status = models.StatusDraft
	}
	if plan.Revision == "" {
		plan.Revision = "A"
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	query := `
		INSERT INTO control_plans (` + controlPlanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		plan.ID, plan.RiskHeaderID, plan.ProductID, plan.DocNumber,
		plan.Revision, plan.Status, plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert control plan: %w", err)
	}
	return nil
}

func (r *controlPlanRepository) Get(ctx context.Context, id uuid.UUID) (*models.ControlPlan, error) {
	query := `SELECT ` + controlPlanColumns + ` FROM control_plans WHERE id = $1`

	p, err := scanControlPlan(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("control plan %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get control plan: %w", err)
	}
	return p, nil
}

func (r *controlPlanRepository) GetByHeader(ctx context.Context, riskHeaderID uuid.UUID) (*models.ControlPlan, error) {
	query := `SELECT ` + controlPlanColumns + ` FROM control_plans WHERE risk_header_id = $1 ORDER BY created_at LIMIT 1`

	p, err := scanControlPlan(r.db.QueryRow(ctx, query, riskHeaderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("control plan for header %s: %w", riskHeaderID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get control plan by header: %w", err)
	}
	return p, nil
}

func (r *controlPlanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	return updateDocumentStatus(ctx, r.db, "control_plans", id, status)
}

func (r *controlPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM control_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete control plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("control plan %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

type controlPlanItemRepository struct {
	db *database.DB
}

// NewControlPlanItemRepository creates a new control plan item repository.
func NewControlPlanItemRepository(db *database.DB) ControlPlanItemRepository {
	return &controlPlanItemRepository{db: db}
}

var _ ControlPlanItemRepository = (*controlPlanItemRepository)(nil)

const controlPlanItemColumns = `id, plan_id, pfmea_line_id, characteristic_id, process_step, control_type,
	control_method, specification, sample_size, frequency, reaction_plan, created_at`

func scanControlPlanItem(row pgx.Row) (*models.ControlPlanItem, error) {
	var i models.ControlPlanItem
	err := row.Scan(&i.ID, &i.PlanID, &i.PFMEALineID, &i.CharacteristicID,
		&i.ProcessStep, &i.ControlType, &i.ControlMethod, &i.Specification,
		&i.SampleSize, &i.Frequency, &i.ReactionPlan, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *controlPlanItemRepository) Create(ctx context.Context, item *models.ControlPlanItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()

	query := `
		INSERT INTO control_plan_items (` + controlPlanItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.PlanID, item.PFMEALineID, item.CharacteristicID,
		item.ProcessStep, item.ControlType, item.ControlMethod, item.Specification,
		item.SampleSize, item.Frequency, item.ReactionPlan, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert control plan item: %w", err)
	}
	return nil
}

func (r *controlPlanItemRepository) Get(ctx context.Context, id uuid.UUID) (*models.ControlPlanItem, error) {
	query := `SELECT ` + controlPlanItemColumns + ` FROM control_plan_items WHERE id = $1`

	i, err := scanControlPlanItem(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("control plan item %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get control plan item: %w", err)
	}
	return i, nil
}

func (r *controlPlanItemRepository) GetByPlan(ctx context.Context, planID uuid.UUID) ([]*models.ControlPlanItem, error) {
	query := `SELECT ` + controlPlanItemColumns + ` FROM control_plan_items WHERE plan_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("list control plan items: %w", err)
	}
	defer rows.Close()

	var out []*models.ControlPlanItem
	for rows.Next() {
		i, err := scanControlPlanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan control plan item: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *controlPlanItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM control_plan_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete control plan item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("control plan item %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
