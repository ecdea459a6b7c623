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

// SopRepository defines data access for work instruction headers.
type SopRepository interface {
	Create(ctx context.Context, sop *models.Sop) error
	Get(ctx context.Context, id uuid.UUID) (*models.Sop, error)
	GetByPlan(ctx context.Context, controlPlanID uuid.UUID) (*models.Sop, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SopStepRepository defines data access for work instruction steps.
type SopStepRepository interface {
	Create(ctx context.Context, step *models.SopStep) error
	GetBySop(ctx context.Context, sopID uuid.UUID) ([]*models.SopStep, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sopRepository struct {
	db *database.DB
}

// NewSopRepository creates a new SOP repository.
func NewSopRepository(db *database.DB) SopRepository {
	return &sopRepository{db: db}
}

var _ SopRepository = (*sopRepository)(nil)

const sopColumns = `id, control_plan_id, product_id, doc_number, revision, status, created_at, updated_at`

func scanSop(row pgx.Row) (*models.Sop, error) {
	var s models.Sop
	err := row.Scan(&s.ID, &s.ControlPlanID, &s.ProductID, &s.DocNumber,
		&s.Revision, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sopRepository) Create(ctx context.Context, sop *models.Sop) error {
	if sop.ID == uuid.Nil {
		sop.ID = uuid.New()
	}
	if sop.Status == "" {
		sop.Status = models.StatusDraft
	}
	if sop.Revision == "" {
		sop.Revision = "A"
	}
	now := time.Now()
	sop.CreatedAt = now
	sop.UpdatedAt = now

	query := `
		INSERT INTO sops (` + sopColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		sop.ID, sop.ControlPlanID, sop.ProductID, sop.DocNumber,
		sop.Revision, sop.Status, sop.CreatedAt, sop.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert sop: %w", err)
	}
	return nil
}

func (r *sopRepository) Get(ctx context.Context, id uuid.UUID) (*models.Sop, error) {
	query := `SELECT ` + sopColumns + ` FROM sops WHERE id = $1`

	s, err := scanSop(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sop %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sop: %w", err)
	}
	return s, nil
}

func (r *sopRepository) GetByPlan(ctx context.Context, controlPlanID uuid.UUID) (*models.Sop, error) {
	query := `SELECT ` + sopColumns + ` FROM sops WHERE control_plan_id = $1 ORDER BY created_at LIMIT 1`

	s, err := scanSop(r.db.QueryRow(ctx, query, controlPlanID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sop for control plan %s: %w", controlPlanID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sop by plan: %w", err)
	}
	return s, nil
}

func (r *sopRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	return updateDocumentStatus(ctx, r.db, "sops", id, status)
}

func (r *sopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sop %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

type sopStepRepository struct {
	db *database.DB
}

// NewSopStepRepository creates a new SOP step repository.
func NewSopStepRepository(db *database.DB) SopStepRepository {
	return &sopStepRepository{db: db}
}

var _ SopStepRepository = (*sopStepRepository)(nil)

const sopStepColumns = `id, sop_id, linked_cp_item_id, step_number, title, description, key_point, safety_note, quality_point, created_at`

func scanSopStep(row pgx.Row) (*models.SopStep, error) {
	var s models.SopStep
	err := row.Scan(&s.ID, &s.SopID, &s.LinkedCPItemID, &s.StepNumber,
		&s.Title, &s.Description, &s.KeyPoint, &s.SafetyNote, &s.QualityPoint,
		&s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sopStepRepository) Create(ctx context.Context, step *models.SopStep) error {
	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	step.CreatedAt = time.Now()

	query := `
		INSERT INTO sop_steps (` + sopStepColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		step.ID, step.SopID, step.LinkedCPItemID, step.StepNumber,
		step.Title, step.Description, step.KeyPoint, step.SafetyNote,
		step.QualityPoint, step.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sop step: %w", err)
	}
	return nil
}

func (r *sopStepRepository) GetBySop(ctx context.Context, sopID uuid.UUID) ([]*models.SopStep, error) {
	query := `SELECT ` + sopStepColumns + ` FROM sop_steps WHERE sop_id = $1 ORDER BY step_number`

	rows, err := r.db.Query(ctx, query, sopID)
	if err != nil {
		return nil, fmt.Errorf("list sop steps: %w", err)
	}
	defer rows.Close()

	var out []*models.SopStep
	for rows.Next() {
		s, err := scanSopStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sop step: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sopStepRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sop_steps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sop step: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sop step %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
