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

// RiskHeaderRepository defines data access for PFMEA document headers.
type RiskHeaderRepository interface {
	Create(ctx context.Context, header *models.RiskHeader) error
	Get(ctx context.Context, id uuid.UUID) (*models.RiskHeader, error)
	GetByProduct(ctx context.Context, productID uuid.UUID) (*models.RiskHeader, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RiskLineRepository defines data access for PFMEA lines.
type RiskLineRepository interface {
	Create(ctx context.Context, line *models.RiskLine) error
	Get(ctx context.Context, id uuid.UUID) (*models.RiskLine, error)
	GetByHeader(ctx context.Context, headerID uuid.UUID) ([]*models.RiskLine, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type riskHeaderRepository struct {
	db *database.DB
}

// NewRiskHeaderRepository creates a new risk header repository.
func NewRiskHeaderRepository(db *database.DB) RiskHeaderRepository {
	return &riskHeaderRepository{db: db}
}

var _ RiskHeaderRepository = (*riskHeaderRepository)(nil)

const riskHeaderColumns = `id, product_id, doc_number, revision, status, prepared_by, created_at, updated_at`

func scanRiskHeader(row pgx.Row) (*models.RiskHeader, error) {
	var h models.RiskHeader
	err := row.Scan(&h.ID, &h.ProductID, &h.DocNumber, &h.Revision,
		&h.Status, &h.PreparedBy, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *riskHeaderRepository) Create(ctx context.Context, header *models.RiskHeader) error {
	if header.ID == uuid.Nil {
		header.ID = uuid.New()
	}
	if header.Status == "" {
		header.Status = models.StatusDraft
	}
	if header.Revision == "" {
		header.Revision = "A"
	}
	now := time.Now()
	header.CreatedAt = now
	header.UpdatedAt = now

	query := `
		INSERT INTO risk_headers (` + riskHeaderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		header.ID, header.ProductID, header.DocNumber, header.Revision,
		header.Status, header.PreparedBy, header.CreatedAt, header.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert risk header: %w", err)
	}
	return nil
}

func (r *riskHeaderRepository) Get(ctx context.Context, id uuid.UUID) (*models.RiskHeader, error) {
	query := `SELECT ` + riskHeaderColumns + ` FROM risk_headers WHERE id = $1`

	h, err := scanRiskHeader(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("risk header %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get risk header: %w", err)
	}
	return h, nil
}

// GetByProduct returns the product's PFMEA header. ErrNotFound when the
// product has no risk analysis yet; the generator treats that as "absent".
func (r *riskHeaderRepository) GetByProduct(ctx context.Context, productID uuid.UUID) (*models.RiskHeader, error) {
	query := `SELECT ` + riskHeaderColumns + ` FROM risk_headers WHERE product_id = $1 ORDER BY created_at LIMIT 1`

	h, err := scanRiskHeader(r.db.QueryRow(ctx, query, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("risk header for product %s: %w", productID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get risk header by product: %w", err)
	}
	return h, nil
}

func (r *riskHeaderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	return updateDocumentStatus(ctx, r.db, "risk_headers", id, status)
}

func (r *riskHeaderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM risk_headers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete risk header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("risk header %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

type riskLineRepository struct {
	db *database.DB
}

// NewRiskLineRepository creates a new risk line repository.
func NewRiskLineRepository(db *database.DB) RiskLineRepository {
	return &riskLineRepository{db: db}
}

var _ RiskLineRepository = (*riskLineRepository)(nil)

const riskLineColumns = `id, header_id, characteristic_id, process_step, failure_mode, failure_effect, failure_cause,
	prevention_control, detection_control, severity, occurrence, detection, rpn, action_priority, recommended_action, created_at`

func scanRiskLine(row pgx.Row) (*models.RiskLine, error) {
	var l models.RiskLine
	err := row.Scan(&l.ID, &l.HeaderID, &l.CharacteristicID, &l.ProcessStep,
		&l.FailureMode, &l.FailureEffect, &l.FailureCause,
		&l.PreventionControl, &l.DetectionControl,
		&l.Severity, &l.Occurrence, &l.Detection, &l.RPN, &l.Priority,
		&l.RecommendedAction, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *riskLineRepository) Create(ctx context.Context, line *models.RiskLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	line.CreatedAt = time.Now()

	query := `
		INSERT INTO risk_lines (` + riskLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(ctx, query,
		line.ID, line.HeaderID, line.CharacteristicID, line.ProcessStep,
		line.FailureMode, line.FailureEffect, line.FailureCause,
		line.PreventionControl, line.DetectionControl,
		line.Severity, line.Occurrence, line.Detection, line.RPN, line.Priority,
		line.RecommendedAction, line.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert risk line: %w", err)
	}
	return nil
}

func (r *riskLineRepository) Get(ctx context.Context, id uuid.UUID) (*models.RiskLine, error) {
	query := `SELECT ` + riskLineColumns + ` FROM risk_lines WHERE id = $1`

	l, err := scanRiskLine(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("risk line %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get risk line: %w", err)
	}
	return l, nil
}

func (r *riskLineRepository) GetByHeader(ctx context.Context, headerID uuid.UUID) ([]*models.RiskLine, error) {
	query := `SELECT ` + riskLineColumns + ` FROM risk_lines WHERE header_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, headerID)
	if err != nil {
		return nil, fmt.Errorf("list risk lines: %w", err)
	}
	defer rows.Close()

	var out []*models.RiskLine
	for rows.Next() {
		l, err := scanRiskLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *riskLineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM risk_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete risk line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("risk line %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// updateDocumentStatus is shared by the four document header tables,
// which carry identical status columns.
func updateDocumentStatus(ctx context.Context, db *database.DB, table string, id uuid.UUID, status models.DocumentStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = $3 WHERE id = $1`, table)

	tag, err := db.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update %s status: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, apperrors.ErrNotFound)
	}
	return nil
}
